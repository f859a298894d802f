package report

// Commitment categories.
const (
	CategoryLoan      = "Loan"
	CategoryInsurance = "Insurance"
	CategoryFinancing = "Financing"
	CategoryOther     = "Other"
)

// Decisions and risk statuses the provider is asked to use. Decision text is kept verbatim on decode.
const (
	DecisionApprove     = "Approve"
	DecisionReject      = "Reject"
	DecisionConditional = "Conditional"

	StatusSafe     = "Safe"
	StatusGambling = "High Risk - Potential Gambling"
)

// Result is the audit outcome returned by the analysis provider. Every field holds a usable
// value after Decode: numbers default to zero and slices are never nil.
type Result struct {
	SalaryTally    SalaryTally     `json:"salaryTally"`
	HiddenLoans    []HiddenLoan    `json:"hiddenLoans"`
	Commitments    []Commitment    `json:"commitments"`
	ATMChecks      []ATMCheck      `json:"atmChecks"`
	RiskAssessment RiskAssessment  `json:"riskAssessment"`
	GovernmentAid  GovernmentAid   `json:"governmentAid"`
	Conclusion     Conclusion      `json:"conclusion"`
	SearchInsights []SearchInsight `json:"searchInsights"`
}

type SalaryTally struct {
	Matches          bool            `json:"matches"`
	PayslipNetPay    float64         `json:"payslipNetPay"`
	MonthlyBreakdown []MonthlyAmount `json:"monthlyBreakdown"`
	Remarks          string          `json:"remarks"`
}

type MonthlyAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// HiddenLoan is a probable private-lender transaction.
type HiddenLoan struct {
	Date               string  `json:"date"`
	Amount             float64 `json:"amount"`
	Description        string  `json:"description"`
	ProbableLender     string  `json:"probableLender"`
	SearchVerification string  `json:"searchVerification,omitempty"`
}

type Commitment struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Frequency   string  `json:"frequency"`
	Category    string  `json:"category"`
}

type ATMCheck struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type RiskAssessment struct {
	GamblingTransactions float64  `json:"gamblingTransactions"`
	Status               string   `json:"status"`
	Details              []string `json:"details"`
	HasDebitCardUsage    bool     `json:"hasDebitCardUsage"`
}

type GovernmentAid struct {
	Detected             bool    `json:"detected"`
	IsGovServant         bool    `json:"isGovServant"`
	AverageMonthlyAmount float64 `json:"averageMonthlyAmount"`
	Remarks              string  `json:"remarks"`
}

type Conclusion struct {
	Decision         string `json:"decision"`
	SuggestedAmount  string `json:"suggestedAmount"`
	InterestRate     string `json:"interestRate"`
	MonthlyRepayment string `json:"monthlyRepayment"`
	RiskRewardRatio  string `json:"riskRewardRatio"`
	Explanation      string `json:"explanation"`
}

type SearchInsight struct {
	Transaction string   `json:"transaction"`
	CompanyInfo string   `json:"companyInfo"`
	RiskLevel   string   `json:"riskLevel"`
	Sources     []string `json:"sources"`
}
