package export

import (
	"fmt"
	"time"

	"audit-backend/internal/report"
)

// Color is an RGB triple.
type Color struct {
	R, G, B int
}

var (
	colorHeader   = Color{15, 23, 42}
	colorPositive = Color{5, 150, 105}
	colorNegative = Color{220, 38, 38}
	colorSummary  = Color{79, 70, 229}
	colorLenders  = Color{220, 38, 38}
)

const (
	reportTitle   = "ELITE FINANCIAL AUDIT REPORT"
	underwriterID = "UNDERWRITER ID: AI-ENGINE-PRO"
)

// Plan is the complete, render-independent description of one PDF report.
type Plan struct {
	FileName      string
	Title         string
	Reference     string
	UnderwriterID string
	Verdict       Verdict
	Tables        []Table
	Conclusion    Narrative
	Metrics       []Metric
}

type Verdict struct {
	Positive  bool
	Color     Color
	Label     string
	Repayment string
}

type Table struct {
	Title     string
	Head      []string
	HeadColor Color
	Widths    []float64
	Rows      [][]string
}

type Narrative struct {
	Title string
	Text  string
}

type Metric struct {
	Label string
	Value string
}

// FileName is the download name for an export taken at now.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("Financial_Audit_%d.%s", now.UnixMilli(), ext)
}

// Layout computes the report plan. It never fails; empty fields fall back to placeholders.
func Layout(r report.Result, now time.Time) Plan {
	r = report.Normalize(r)

	verdict := Verdict{
		Positive:  report.IsApprove(r.Conclusion.Decision),
		Color:     colorNegative,
		Label:     report.VerdictLabel(r.Conclusion.Decision),
		Repayment: report.OrDefault(r.Conclusion.MonthlyRepayment, report.DefaultRepayment),
	}
	if verdict.Positive {
		verdict.Color = colorPositive
	}

	tables := []Table{{
		Title:     "Summary of Financial Standing:",
		Head:      []string{"Category", "Calculated Value", "Risk Assessment"},
		HeadColor: colorSummary,
		Widths:    []float64{60, 70, 50},
		Rows: [][]string{
			{"Avg Monthly Inflow", report.FormatRM(report.AverageInflow(r)), "Verified"},
			{"ATM Card Presence", report.CardPresence(r), report.CardAssessment(r)},
			{"Hidden Debt Risk", report.DebtRisk(r), report.EntitiesLabel(r)},
			{"Risk Reward Ratio", report.OrDefault(r.Conclusion.RiskRewardRatio, report.NotAvailable), "Engine Rated"},
		},
	}}

	if len(r.HiddenLoans) > 0 {
		rows := make([][]string, 0, len(r.HiddenLoans))
		for _, l := range r.HiddenLoans {
			rows = append(rows, []string{report.LenderName(l), report.VerificationDetail(l), report.FormatRM(l.Amount)})
		}
		tables = append(tables, Table{
			Title:     "Verified Hidden Lenders & Private Inflows:",
			Head:      []string{"Lender Entity", "Search Verification Details", "Amount"},
			HeadColor: colorLenders,
			Widths:    []float64{50, 95, 35},
			Rows:      rows,
		})
	}

	return Plan{
		FileName:      FileName(now, "pdf"),
		Title:         reportTitle,
		Reference:     fmt.Sprintf("REF: LW-CORE-AUDIT-%d", now.UnixMilli()),
		UnderwriterID: underwriterID,
		Verdict:       verdict,
		Tables:        tables,
		Conclusion: Narrative{
			Title: "Audit Conclusion & Logic:",
			Text:  report.OrDefault(r.Conclusion.Explanation, report.NoExplanation),
		},
		Metrics: []Metric{
			{Label: "Suggested Limit", Value: report.OrDefault(r.Conclusion.SuggestedAmount, report.NotAvailable)},
			{Label: "Risk Ratio", Value: report.OrDefault(r.Conclusion.RiskRewardRatio, report.NotAvailable)},
			{Label: "Gov Servant", Value: report.YesNo(r.GovernmentAid.IsGovServant)},
			{Label: "Instalment", Value: report.OrDefault(r.Conclusion.MonthlyRepayment, report.NotAvailable)},
		},
	}
}
