package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"audit-backend/internal/report"
	"audit-backend/internal/shared/telemetry"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetSummary     = "Summary"
	SheetInflow      = "Inflow"
	SheetHiddenLoans = "Hidden Loans"
	SheetCommitments = "Commitments"
	SheetATMChecks   = "ATM Checks"
	SheetInsights    = "Search Insights"
)

// XLSX writes the full report model as a workbook, one sheet per section.
func XLSX(r report.Result, now time.Time) (art Artifact, err error) {
	name := FileName(now, "xlsx")
	defer func() {
		if rec := recover(); rec != nil {
			art = Artifact{}
			err = &ExportError{Format: "xlsx", Err: fmt.Errorf("panic: %v", rec)}
		}
		if err != nil {
			telemetry.Error("export.xlsx.failed", map[string]any{"file": name, "error": err})
		}
	}()

	body, buildErr := buildWorkbook(report.Normalize(r))
	if buildErr != nil {
		return Artifact{}, &ExportError{Format: "xlsx", Err: buildErr}
	}
	telemetry.Info("export.xlsx.ok", map[string]any{"file": name, "bytes": len(body)})
	return Artifact{FileName: name, ContentType: contentTypeXLSX, Body: body}, nil
}

func buildWorkbook(r report.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, sheet := range []string{SheetInflow, SheetHiddenLoans, SheetCommitments, SheetATMChecks, SheetInsights} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", sheet, err)
		}
	}

	headStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F46E5"}},
	})
	if err != nil {
		return nil, fmt.Errorf("head style: %w", err)
	}

	c := r.Conclusion
	summary := [][]any{
		{"Field", "Value"},
		{"Decision", report.VerdictLabel(c.Decision)},
		{"Monthly Repayment", report.OrDefault(c.MonthlyRepayment, report.DefaultRepayment)},
		{"Suggested Amount", report.OrDefault(c.SuggestedAmount, report.NotAvailable)},
		{"Interest Rate", report.OrDefault(c.InterestRate, report.NotAvailable)},
		{"Risk Reward Ratio", report.OrDefault(c.RiskRewardRatio, report.NotAvailable)},
		{"Average Monthly Inflow", report.AverageInflow(r)},
		{"Payslip Net Pay", r.SalaryTally.PayslipNetPay},
		{"Salary Matches Statement", report.YesNo(r.SalaryTally.Matches)},
		{"Salary Remarks", r.SalaryTally.Remarks},
		{"Debit Card Usage", report.CardStatus(r)},
		{"Risk Status", r.RiskAssessment.Status},
		{"Gambling Transactions", r.RiskAssessment.GamblingTransactions},
		{"Risk Details", strings.Join(r.RiskAssessment.Details, "\n")},
		{"Government Aid Detected", report.YesNo(r.GovernmentAid.Detected)},
		{"Government Servant", report.YesNo(r.GovernmentAid.IsGovServant)},
		{"Average Aid Amount", r.GovernmentAid.AverageMonthlyAmount},
		{"Aid Remarks", r.GovernmentAid.Remarks},
		{"Explanation", report.OrDefault(c.Explanation, report.NoExplanation)},
	}

	inflow := [][]any{{"Month", "Amount"}}
	for _, m := range r.SalaryTally.MonthlyBreakdown {
		inflow = append(inflow, []any{m.Month, m.Amount})
	}

	loans := [][]any{{"Date", "Probable Lender", "Description", "Search Verification", "Amount"}}
	for _, l := range r.HiddenLoans {
		loans = append(loans, []any{l.Date, report.LenderName(l), l.Description, l.SearchVerification, l.Amount})
	}

	commitments := [][]any{{"Description", "Category", "Frequency", "Amount"}}
	for _, cm := range r.Commitments {
		commitments = append(commitments, []any{cm.Description, cm.Category, cm.Frequency, cm.Amount})
	}

	atm := [][]any{{"Date", "Description", "Amount"}}
	for _, a := range r.ATMChecks {
		atm = append(atm, []any{a.Date, a.Description, a.Amount})
	}

	insights := [][]any{{"Transaction", "Company Info", "Risk Level", "Sources"}}
	for _, s := range r.SearchInsights {
		insights = append(insights, []any{s.Transaction, s.CompanyInfo, s.RiskLevel, strings.Join(s.Sources, "\n")})
	}

	sheets := []struct {
		name   string
		rows   [][]any
		widths []float64
	}{
		{SheetSummary, summary, []float64{28, 80}},
		{SheetInflow, inflow, []float64{18, 16}},
		{SheetHiddenLoans, loans, []float64{14, 28, 40, 60, 14}},
		{SheetCommitments, commitments, []float64{40, 14, 14, 14}},
		{SheetATMChecks, atm, []float64{14, 48, 14}},
		{SheetInsights, insights, []float64{32, 48, 14, 60}},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.rows, s.widths, headStyle); err != nil {
			return nil, err
		}
	}

	idx, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, widths []float64, headStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headStyle); err != nil {
		return fmt.Errorf("%s style: %w", sheet, err)
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		_ = f.SetColWidth(sheet, col, col, w)
	}
	return nil
}
