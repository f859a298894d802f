package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"audit-backend/internal/export"
	"audit-backend/internal/llm"
	"audit-backend/internal/report"
)

func main() {
	payloadPath := flag.String("payload", "", "Path to a saved provider JSON payload")
	reportPath := flag.String("report", "", "Path to an exported PDF report to print as text")
	flag.Parse()

	if strings.TrimSpace(*payloadPath) == "" && strings.TrimSpace(*reportPath) == "" {
		exitErr("one of -payload or -report is required")
	}

	if *payloadPath != "" {
		validatePayload(*payloadPath)
	}
	if *reportPath != "" {
		printReport(*reportPath)
	}
}

func validatePayload(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		exitErr(fmt.Sprintf("read payload: %v", err))
	}
	if err := llm.ValidateJSON(data); err != nil {
		var ve *llm.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintf(os.Stderr, "INVALID: %d violation(s)\n", len(ve.Violations))
			for _, v := range ve.Violations {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", v.Location, v.Message)
			}
			os.Exit(1)
		}
		exitErr(err.Error())
	}

	result, err := report.Decode(data)
	if err != nil {
		exitErr(fmt.Sprintf("decode payload: %v", err))
	}
	fmt.Printf("OK: %s is valid (decision %s, %d hidden loan(s))\n",
		path, report.VerdictLabel(result.Conclusion.Decision), len(result.HiddenLoans))
}

func printReport(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		exitErr(fmt.Sprintf("read report: %v", err))
	}
	pages, err := export.PageCount(data)
	if err != nil {
		exitErr(fmt.Sprintf("open report: %v", err))
	}
	text, err := export.PlainText(data)
	if err != nil {
		exitErr(fmt.Sprintf("extract report text: %v", err))
	}
	fmt.Printf("%s: %d page(s)\n\n%s\n", path, pages, text)
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
