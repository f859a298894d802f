package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"audit-backend/internal/bootstrap"
	"audit-backend/internal/export"
	"audit-backend/internal/intake"
	"audit-backend/internal/shared/config"
)

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	cfg := config.Load()

	var files fileList
	flag.Var(&files, "file", "Bank statement or payslip to audit (repeatable)")
	note := flag.String("note", "", "Context note for the underwriter prompt")
	outDir := flag.String("out", cfg.ExportDir, "Directory for the exported report")
	withXLSX := flag.Bool("xlsx", false, "Also export an XLSX workbook")
	rawPath := flag.String("raw", "", "Path to write the decoded result JSON (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider (gemini or openai)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if len(files) == 0 {
		exitErr("at least one -file is required")
	}

	cfg.LLMProvider = *provider
	cfg.LLMModel = *model
	cfg.ExportDir = *outDir
	app, err := bootstrap.Build(cfg)
	if err != nil {
		exitErr(err.Error())
	}

	ctx := context.Background()
	ws := app.Workspace
	sources := make([]intake.Source, 0, len(files))
	for _, path := range files {
		sources = append(sources, intake.FileSource(path))
	}
	if err := ws.AddFiles(ctx, sources); err != nil {
		exitErr(fmt.Sprintf("read documents: %v", err))
	}
	ws.SetNote(*note)

	if err := ws.Analyze(ctx); err != nil {
		exitErr(fmt.Sprintf("analyze: %v", err))
	}

	now := time.Now()
	pdfArt, err := ws.ExportPDF(now)
	if err != nil {
		exitErr(fmt.Sprintf("export pdf: %v", err))
	}
	save(ctx, app, pdfArt)

	if *withXLSX {
		xlsxArt, err := ws.ExportXLSX(now)
		if err != nil {
			exitErr(fmt.Sprintf("export xlsx: %v", err))
		}
		save(ctx, app, xlsxArt)
	}

	state := ws.State()
	if strings.TrimSpace(*rawPath) != "" {
		payload, err := json.MarshalIndent(state.Result, "", "  ")
		if err != nil {
			exitErr(fmt.Sprintf("marshal result: %v", err))
		}
		if err := os.MkdirAll(filepath.Dir(*rawPath), 0o755); err != nil {
			exitErr(fmt.Sprintf("create output dir: %v", err))
		}
		if err := os.WriteFile(*rawPath, payload, 0o644); err != nil {
			exitErr(fmt.Sprintf("write result: %v", err))
		}
	}

	fmt.Printf("Decision: %s\n", state.Result.Conclusion.Decision)
	fmt.Printf("Monthly repayment: %s\n", state.Result.Conclusion.MonthlyRepayment)
	fmt.Printf("Hidden loans: %d\n", len(state.Result.HiddenLoans))
}

func save(ctx context.Context, app *bootstrap.App, art export.Artifact) {
	if _, err := app.Store.SaveWithKey(ctx, art.FileName, art.ContentType, bytes.NewReader(art.Body)); err != nil {
		exitErr(fmt.Sprintf("save %s: %v", art.FileName, err))
	}
	fmt.Printf("OK: wrote %s\n", app.Store.Path(art.FileName))
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

