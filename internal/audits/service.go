package audits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"audit-backend/internal/llm"
	"audit-backend/internal/report"
	"audit-backend/internal/shared/metrics"
	"audit-backend/internal/shared/telemetry"
)

var (
	ErrNoAttachments = errors.New("at least one document is required")
	ErrBusy          = errors.New("an analysis is already in progress")
	ErrNoResult      = errors.New("no audit result to export")
)

// Analyzer turns uploaded documents into an audit result.
type Analyzer interface {
	Analyze(ctx context.Context, req llm.Request) (report.Result, error)
	ProviderName() string
}

// Service runs audits against the configured analyzer.
type Service struct {
	Analyzer Analyzer
}

// NewService constructs a Service.
func NewService(analyzer Analyzer) *Service {
	return &Service{Analyzer: analyzer}
}

// Provider names the backing model provider.
func (s *Service) Provider() string {
	if s.Analyzer == nil {
		return ""
	}
	return s.Analyzer.ProviderName()
}

// Run performs one audit. Errors from the analyzer are returned unchanged.
func (s *Service) Run(ctx context.Context, req llm.Request) (report.Result, error) {
	if len(req.Attachments) == 0 {
		return report.Result{}, ErrNoAttachments
	}
	auditID := uuid.NewString()
	start := time.Now()
	metrics.IncAuditStarted()
	telemetry.Info("audit.started", map[string]any{
		"audit_id":    auditID,
		"provider":    s.Provider(),
		"attachments": len(req.Attachments),
		"has_note":    req.ContextNote != "",
	})

	result, err := s.Analyzer.Analyze(ctx, req)
	metrics.ObserveAuditDurationMs(metrics.SinceMillis(start))
	if err != nil {
		metrics.IncAuditFailed()
		telemetry.Error("audit.failed", map[string]any{
			"audit_id":    auditID,
			"provider":    s.Provider(),
			"duration_ms": time.Since(start).Milliseconds(),
			"error_kind":  errorKind(err),
			"error":       err.Error(),
		})
		return report.Result{}, err
	}

	metrics.IncAuditCompleted()
	telemetry.Info("audit.completed", map[string]any{
		"audit_id":     auditID,
		"provider":     s.Provider(),
		"duration_ms":  time.Since(start).Milliseconds(),
		"decision":     result.Conclusion.Decision,
		"hidden_loans": len(result.HiddenLoans),
	})
	return result, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, llm.ErrConfiguration):
		return "configuration"
	case errors.Is(err, llm.ErrProvider):
		return "provider"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport"
	}
}
