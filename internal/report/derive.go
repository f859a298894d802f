package report

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Placeholders shown when a field is empty.
const (
	NotAvailable         = "N/A"
	DefaultVerdict       = "REJECT"
	DefaultRepayment     = "RM 0.00"
	NoExplanation        = "Detailed analysis not generated."
	NoHiddenDebt         = "No High-Risk Private Debt Found"
	UnknownLender        = "Unknown"
	NoVerificationDetail = "No data"
)

// AverageInflow is the mean of the monthly breakdown amounts, zero when there are none.
func AverageInflow(r Result) float64 {
	months := r.SalaryTally.MonthlyBreakdown
	if len(months) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, m := range months {
		sum = sum.Add(decimal.NewFromFloat(m.Amount))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(months))))
	f, _ := avg.Float64()
	return f
}

// IsApprove reports whether the decision takes the positive path. Only "approve" matches,
// so "Conditional" renders as negative.
func IsApprove(decision string) bool {
	return strings.EqualFold(strings.TrimSpace(decision), DecisionApprove)
}

// VerdictLabel is the upper-cased decision, or REJECT when none was given.
func VerdictLabel(decision string) string {
	d := strings.TrimSpace(decision)
	if d == "" {
		return DefaultVerdict
	}
	return strings.ToUpper(d)
}

// CardPresence and CardAssessment describe debit card evidence for the summary table.
func CardPresence(r Result) string {
	if r.RiskAssessment.HasDebitCardUsage {
		return "ACTIVE"
	}
	return "NO USAGE FOUND"
}

func CardAssessment(r Result) string {
	if r.RiskAssessment.HasDebitCardUsage {
		return "Pass"
	}
	return "Critical"
}

// CardStatus is the dashboard label for debit card evidence.
func CardStatus(r Result) string {
	if r.RiskAssessment.HasDebitCardUsage {
		return "Verified"
	}
	return "Not Detected"
}

// DebtRisk is HIGH when at least one hidden loan was found.
func DebtRisk(r Result) string {
	if len(r.HiddenLoans) > 0 {
		return "HIGH"
	}
	return "LOW"
}

func EntitiesLabel(r Result) string {
	return humanize.Comma(int64(len(r.HiddenLoans))) + " Entities"
}

// IsGambling reports whether the provider flagged gambling activity.
func IsGambling(r Result) bool {
	return strings.EqualFold(strings.TrimSpace(r.RiskAssessment.Status), StatusGambling)
}

// FormatRM renders an amount as "RM 1,234.5" with at most three fraction digits.
func FormatRM(amount float64) string {
	rounded, _ := decimal.NewFromFloat(amount).Round(3).Float64()
	return "RM " + humanize.CommafWithDigits(rounded, 3)
}

// OrDefault returns def when s is blank.
func OrDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// YesNo renders a flag for the metrics strip.
func YesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// LenderName and VerificationDetail apply the hidden-loan fallbacks.
func LenderName(l HiddenLoan) string {
	return OrDefault(l.ProbableLender, UnknownLender)
}

func VerificationDetail(l HiddenLoan) string {
	if strings.TrimSpace(l.SearchVerification) != "" {
		return l.SearchVerification
	}
	return OrDefault(l.Description, NoVerificationDetail)
}
