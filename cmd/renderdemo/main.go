package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"audit-backend/internal/dashboard"
	"audit-backend/internal/export"
	"audit-backend/internal/report"
)

func main() {
	outDir := flag.String("out", "./out", "output directory for the sample report files")
	flag.Parse()

	result := sampleResult()
	now := time.Now()

	pdfArt, err := export.PDF(result, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
	xlsxArt, err := export.XLSX(result, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
	var page bytes.Buffer
	if err := dashboard.Render(&page, dashboard.Build(dashboard.State{
		Files:  []dashboard.FileInfo{{Name: "statement_jan_mar.pdf", MimeType: "application/pdf"}},
		Result: &result,
	})); err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutputs(*outDir, result, page.Bytes(), pdfArt, xlsxArt); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if err := validateRenderedPDF(pdfArt.Body, result); err != nil {
		fmt.Fprintf(os.Stderr, "render validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s\n", filepath.Join(*outDir, pdfArt.FileName))
}

func writeOutputs(dir string, result report.Result, page []byte, arts ...export.Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, a := range arts {
		if err := os.WriteFile(filepath.Join(dir, a.FileName), a.Body, 0o644); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "sample_dashboard.html"), page, 0o644); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "sample_result.json"), payload, 0o644)
}

func sampleResult() report.Result {
	return report.Result{
		SalaryTally: report.SalaryTally{
			Matches:       true,
			PayslipNetPay: 4850,
			MonthlyBreakdown: []report.MonthlyAmount{
				{Month: "January 2024", Amount: 4850},
				{Month: "February 2024", Amount: 4850},
				{Month: "March 2024", Amount: 5120.5},
			},
			Remarks: "Salary credited by ACME SDN BHD on the 25th of each month.",
		},
		HiddenLoans: []report.HiddenLoan{
			{
				Date:               "2024-02-14",
				Amount:             2000,
				Description:        "DUITNOW TRF FROM KAPITAL MESRA",
				ProbableLender:     "Kapital Mesra Enterprise",
				SearchVerification: "Not on the KPKT licensed money lender list",
			},
		},
		Commitments: []report.Commitment{
			{Description: "PTPTN repayment", Amount: 180, Frequency: "Monthly", Category: report.CategoryLoan},
			{Description: "Great Eastern premium", Amount: 220, Frequency: "Monthly", Category: report.CategoryInsurance},
		},
		ATMChecks: []report.ATMCheck{
			{Date: "2024-03-02", Description: "ATM WITHDRAWAL KL SENTRAL", Amount: 300},
		},
		RiskAssessment: report.RiskAssessment{
			Status:            report.StatusSafe,
			HasDebitCardUsage: true,
			Details:           []string{"Regular groceries and fuel spending"},
		},
		GovernmentAid: report.GovernmentAid{Remarks: "No STR credits detected"},
		Conclusion: report.Conclusion{
			Decision:         report.DecisionApprove,
			SuggestedAmount:  "RM 8,000",
			InterestRate:     "8%",
			MonthlyRepayment: "RM 864.00",
			RiskRewardRatio:  "1:3",
			Explanation:      "Income is stable and matches the payslip. One private transfer was found and is small relative to income.",
		},
		SearchInsights: []report.SearchInsight{
			{Transaction: "KAPITAL MESRA", CompanyInfo: "Sole proprietorship registered in Selangor", RiskLevel: "High", Sources: []string{"ssm.com.my"}},
		},
	}
}

func validateRenderedPDF(body []byte, result report.Result) error {
	text, err := export.PlainText(body)
	if err != nil {
		return err
	}
	for _, want := range []string{
		report.VerdictLabel(result.Conclusion.Decision),
		result.Conclusion.MonthlyRepayment,
		result.HiddenLoans[0].ProbableLender,
	} {
		if !strings.Contains(text, want) {
			return fmt.Errorf("rendered PDF is missing %q", want)
		}
	}
	return nil
}
