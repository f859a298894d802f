package audits

import (
	"context"
	"sync"
	"time"

	"audit-backend/internal/dashboard"
	"audit-backend/internal/export"
	"audit-backend/internal/intake"
	"audit-backend/internal/llm"
	"audit-backend/internal/report"
	"audit-backend/internal/shared/metrics"
	"audit-backend/internal/shared/telemetry"
)

// Workspace is the single-session audit desk: pending documents, the underwriter's
// note, and the last outcome of an analysis.
type Workspace struct {
	svc   *Service
	files *intake.List

	mu         sync.Mutex
	note       string
	busy       bool
	result     *report.Result
	errMsg     string
	generation uint64
}

// NewWorkspace constructs an empty Workspace.
func NewWorkspace(svc *Service, maxBytes int64) *Workspace {
	return &Workspace{svc: svc, files: intake.NewList(maxBytes)}
}

// AddFiles encodes and appends sources. Files that fail are reported in the joined error;
// the others are still added.
func (w *Workspace) AddFiles(ctx context.Context, sources []intake.Source) error {
	return w.files.Add(ctx, sources)
}

// RemoveFile drops the attachment at position i.
func (w *Workspace) RemoveFile(i int) error {
	return w.files.Remove(i)
}

// SetNote replaces the context note.
func (w *Workspace) SetNote(note string) {
	w.mu.Lock()
	w.note = note
	w.mu.Unlock()
}

// Analyze runs one audit over the current attachments and note. Only one analysis
// runs at a time. A response that arrives after Reset is dropped.
func (w *Workspace) Analyze(ctx context.Context) error {
	attachments := w.files.Snapshot()
	if len(attachments) == 0 {
		return ErrNoAttachments
	}

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	w.busy = true
	w.errMsg = ""
	gen := w.generation
	req := llm.Request{Attachments: attachments, ContextNote: w.note}
	w.mu.Unlock()

	result, err := w.svc.Run(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		metrics.IncAuditDiscarded()
		telemetry.Warn("workspace.analyze.discarded", map[string]any{"generation": gen})
		return nil
	}
	w.busy = false
	if err != nil {
		w.errMsg = llm.UserMessage(err)
		return err
	}
	w.result = &result
	return nil
}

// Reset clears everything and invalidates any analysis still in flight.
func (w *Workspace) Reset() {
	w.files.Clear()
	w.mu.Lock()
	w.note = ""
	w.busy = false
	w.result = nil
	w.errMsg = ""
	w.generation++
	w.mu.Unlock()
}

// State snapshots the workspace for the dashboard.
func (w *Workspace) State() dashboard.State {
	attachments := w.files.Snapshot()
	files := make([]dashboard.FileInfo, 0, len(attachments))
	for _, a := range attachments {
		files = append(files, dashboard.FileInfo{Name: a.Name, MimeType: a.MimeType})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s := dashboard.State{
		Files: files,
		Note:  w.note,
		Busy:  w.busy,
		Error: w.errMsg,
	}
	if w.result != nil {
		r := *w.result
		s.Result = &r
	}
	return s
}

// ExportPDF renders the current result as a PDF report.
func (w *Workspace) ExportPDF(now time.Time) (export.Artifact, error) {
	r, err := w.current()
	if err != nil {
		return export.Artifact{}, err
	}
	return Export("pdf", r, now)
}

// ExportXLSX renders the current result as a workbook.
func (w *Workspace) ExportXLSX(now time.Time) (export.Artifact, error) {
	r, err := w.current()
	if err != nil {
		return export.Artifact{}, err
	}
	return Export("xlsx", r, now)
}

func (w *Workspace) current() (report.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return report.Result{}, ErrNoResult
	}
	return *w.result, nil
}

// Export renders r in the given format ("pdf" or "xlsx") and counts the outcome.
func Export(format string, r report.Result, now time.Time) (export.Artifact, error) {
	var (
		art export.Artifact
		err error
	)
	switch format {
	case "xlsx":
		art, err = export.XLSX(r, now)
	default:
		format = "pdf"
		art, err = export.PDF(r, now)
	}
	if err != nil {
		metrics.IncExportFailed()
		return export.Artifact{}, err
	}
	metrics.IncExport(format)
	return art, nil
}
