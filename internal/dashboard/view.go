package dashboard

import (
	"strconv"

	"audit-backend/internal/report"
)

// Modes of the main panel.
const (
	ModeWaiting   = "waiting"
	ModeAnalyzing = "analyzing"
	ModeResult    = "result"
	ModeError     = "error"
)

const (
	defaultRemarks = "Calculation verified against source."
	loanTerm       = "10 MO."
)

// FileInfo describes one pending attachment.
type FileInfo struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// State is the workspace snapshot the dashboard is built from.
type State struct {
	Files  []FileInfo
	Note   string
	Busy   bool
	Result *report.Result
	Error  string
}

type View struct {
	Mode          string         `json:"mode"`
	Error         string         `json:"error,omitempty"`
	Busy          bool           `json:"busy"`
	CanAnalyze    bool           `json:"canAnalyze"`
	CanExport     bool           `json:"canExport"`
	Note          string         `json:"note"`
	Files         []FileView     `json:"files"`
	Banner        *Banner        `json:"banner,omitempty"`
	Inflow        *Inflow        `json:"inflow,omitempty"`
	Card          *Card          `json:"card,omitempty"`
	HiddenLoans   []Loan         `json:"hiddenLoans,omitempty"`
	NoHiddenDebt  string         `json:"noHiddenDebt,omitempty"`
	Commitments   []Commitment   `json:"commitments,omitempty"`
	ATMChecks     []ATMCheck     `json:"atmChecks,omitempty"`
	GovernmentAid *GovernmentAid `json:"governmentAid,omitempty"`
	Insights      []Insight      `json:"searchInsights,omitempty"`
	Conclusion    *Conclusion    `json:"conclusion,omitempty"`
}

type FileView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

type Banner struct {
	Positive  bool   `json:"positive"`
	Label     string `json:"label"`
	Repayment string `json:"repayment"`
	Rate      string `json:"rate"`
	Term      string `json:"term"`
}

type MonthCard struct {
	Month  string `json:"month"`
	Amount string `json:"amount"`
}

type Inflow struct {
	Average       string      `json:"average"`
	PayslipNetPay string      `json:"payslipNetPay"`
	Matches       bool        `json:"matches"`
	Months        []MonthCard `json:"months"`
	Remarks       string      `json:"remarks"`
}

type Card struct {
	Verified             bool     `json:"verified"`
	Status               string   `json:"status"`
	RiskStatus           string   `json:"riskStatus"`
	Gambling             bool     `json:"gambling"`
	GamblingTransactions string   `json:"gamblingTransactions"`
	Indicators           []string `json:"indicators"`
}

type Loan struct {
	Lender        string `json:"lender"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	SearchInsight string `json:"searchInsight,omitempty"`
}

type Commitment struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	Amount      string `json:"amount"`
}

type ATMCheck struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type GovernmentAid struct {
	Detected      bool   `json:"detected"`
	GovServant    bool   `json:"govServant"`
	AverageAmount string `json:"averageAmount"`
	Remarks       string `json:"remarks"`
}

type Insight struct {
	Transaction string   `json:"transaction"`
	CompanyInfo string   `json:"companyInfo"`
	RiskLevel   string   `json:"riskLevel"`
	Sources     []string `json:"sources"`
}

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Conclusion struct {
	Explanation string   `json:"explanation"`
	Metrics     []Metric `json:"metrics"`
}

// Build derives the dashboard from a workspace snapshot. It never fails on missing fields.
func Build(s State) View {
	v := View{
		Mode:       modeFor(s),
		Error:      s.Error,
		Busy:       s.Busy,
		CanAnalyze: len(s.Files) > 0 && !s.Busy,
		CanExport:  s.Result != nil,
		Note:       s.Note,
		Files:      make([]FileView, 0, len(s.Files)),
	}
	for i, f := range s.Files {
		v.Files = append(v.Files, FileView{Index: i, Name: f.Name, MimeType: f.MimeType})
	}
	if s.Result == nil {
		return v
	}

	r := report.Normalize(*s.Result)
	c := r.Conclusion

	v.Banner = &Banner{
		Positive:  report.IsApprove(c.Decision),
		Label:     report.VerdictLabel(c.Decision),
		Repayment: report.OrDefault(c.MonthlyRepayment, report.NotAvailable),
		Rate:      report.OrDefault(c.InterestRate, report.NotAvailable),
		Term:      loanTerm,
	}

	inflow := &Inflow{
		Average:       report.FormatRM(report.AverageInflow(r)),
		PayslipNetPay: report.FormatRM(r.SalaryTally.PayslipNetPay),
		Matches:       r.SalaryTally.Matches,
		Months:        make([]MonthCard, 0, len(r.SalaryTally.MonthlyBreakdown)),
		Remarks:       report.OrDefault(r.SalaryTally.Remarks, defaultRemarks),
	}
	for _, m := range r.SalaryTally.MonthlyBreakdown {
		inflow.Months = append(inflow.Months, MonthCard{Month: m.Month, Amount: report.FormatRM(m.Amount)})
	}
	v.Inflow = inflow

	v.Card = &Card{
		Verified:             r.RiskAssessment.HasDebitCardUsage,
		Status:               report.CardStatus(r),
		RiskStatus:           report.OrDefault(r.RiskAssessment.Status, report.NotAvailable),
		Gambling:             report.IsGambling(r),
		GamblingTransactions: strconv.FormatFloat(r.RiskAssessment.GamblingTransactions, 'f', -1, 64),
		Indicators:           r.RiskAssessment.Details,
	}

	if len(r.HiddenLoans) == 0 {
		v.NoHiddenDebt = report.NoHiddenDebt
	}
	for _, l := range r.HiddenLoans {
		v.HiddenLoans = append(v.HiddenLoans, Loan{
			Lender:        report.LenderName(l),
			Date:          l.Date,
			Amount:        report.FormatRM(l.Amount),
			Description:   l.Description,
			SearchInsight: l.SearchVerification,
		})
	}
	for _, cm := range r.Commitments {
		v.Commitments = append(v.Commitments, Commitment{
			Description: cm.Description,
			Category:    cm.Category,
			Frequency:   report.OrDefault(cm.Frequency, report.NotAvailable),
			Amount:      report.FormatRM(cm.Amount),
		})
	}
	for _, a := range r.ATMChecks {
		v.ATMChecks = append(v.ATMChecks, ATMCheck{Date: a.Date, Description: a.Description, Amount: report.FormatRM(a.Amount)})
	}
	v.GovernmentAid = &GovernmentAid{
		Detected:      r.GovernmentAid.Detected,
		GovServant:    r.GovernmentAid.IsGovServant,
		AverageAmount: report.FormatRM(r.GovernmentAid.AverageMonthlyAmount),
		Remarks:       r.GovernmentAid.Remarks,
	}
	for _, s := range r.SearchInsights {
		v.Insights = append(v.Insights, Insight{
			Transaction: s.Transaction,
			CompanyInfo: s.CompanyInfo,
			RiskLevel:   report.OrDefault(s.RiskLevel, report.NotAvailable),
			Sources:     s.Sources,
		})
	}
	v.Conclusion = &Conclusion{
		Explanation: report.OrDefault(c.Explanation, report.NoExplanation),
		Metrics: []Metric{
			{Label: "Suggested Limit", Value: report.OrDefault(c.SuggestedAmount, report.NotAvailable)},
			{Label: "Risk Ratio", Value: report.OrDefault(c.RiskRewardRatio, report.NotAvailable)},
			{Label: "Gov Servant", Value: report.YesNo(r.GovernmentAid.IsGovServant)},
			{Label: "Instalment", Value: report.OrDefault(c.MonthlyRepayment, report.NotAvailable)},
		},
	}
	return v
}

// An error without a result replaces the waiting placeholder.
func modeFor(s State) string {
	switch {
	case s.Busy:
		return ModeAnalyzing
	case s.Result != nil:
		return ModeResult
	case s.Error != "":
		return ModeError
	default:
		return ModeWaiting
	}
}
