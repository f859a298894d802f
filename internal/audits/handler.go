package audits

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"audit-backend/internal/dashboard"
	"audit-backend/internal/export"
	"audit-backend/internal/intake"
	"audit-backend/internal/llm"
	"audit-backend/internal/report"
	"audit-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the audit service and the shared workspace.
type Handler struct {
	Svc       *Service
	Workspace *Workspace
	MaxBytes  int64
	Now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, ws *Workspace, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = intake.DefaultMaxBytes
	}
	return &Handler{Svc: svc, Workspace: ws, MaxBytes: maxBytes, Now: time.Now}
}

// RegisterRoutes attaches stateless audit and report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.POST("/audits", append(limit, h.runAudit)...)
	rg.POST("/reports/pdf", h.exportReport("pdf"))
	rg.POST("/reports/xlsx", h.exportReport("xlsx"))
	rg.POST("/reports/validate", h.validateReport)
}

// RegisterWorkspaceRoutes attaches the dashboard session routes.
func (h *Handler) RegisterWorkspaceRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	ws := rg.Group("/workspace")
	ws.GET("", h.getWorkspace)
	ws.POST("/files", h.addFiles)
	ws.DELETE("/files/:index", h.removeFile)
	ws.PUT("/note", h.setNote)
	ws.POST("/analyze", append(limit, h.analyzeWorkspace)...)
	ws.POST("/reset", h.resetWorkspace)
	ws.GET("/export.pdf", h.exportWorkspace("pdf"))
	ws.GET("/export.xlsx", h.exportWorkspace("xlsx"))
}

// Dashboard renders the HTML page for the workspace.
func (h *Handler) Dashboard(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := dashboard.Render(c.Writer, dashboard.Build(h.Workspace.State())); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) runAudit(c *gin.Context) {
	sources, ok := h.readUploads(c)
	if !ok {
		return
	}
	files := intake.NewList(h.MaxBytes)
	if err := files.Add(c.Request.Context(), sources); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "one or more files could not be read", splitErrors(err))
		return
	}

	result, err := h.Svc.Run(c.Request.Context(), llm.Request{
		Attachments: files.Snapshot(),
		ContextNote: c.PostForm("contextNote"),
	})
	if err != nil {
		writeAnalyzeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) exportReport(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read request body", nil)
			return
		}
		result, err := report.Decode(body)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "body must be an audit result object", nil)
			return
		}
		art, err := Export(format, result, h.Now())
		if err != nil {
			writeExportError(c, err)
			return
		}
		download(c, art)
	}
}

func (h *Handler) validateReport(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read request body", nil)
		return
	}
	err = llm.ValidateJSON(body)
	if err == nil {
		respond.OK(c, gin.H{"valid": true, "errors": []llm.SchemaViolation{}})
		return
	}
	var ve *llm.ValidationError
	if errors.As(err, &ve) {
		respond.OK(c, gin.H{"valid": false, "errors": ve.Violations})
		return
	}
	respond.Error(c, http.StatusBadRequest, "validation_error", "payload is not valid JSON", nil)
}

func (h *Handler) getWorkspace(c *gin.Context) {
	respond.OK(c, dashboard.Build(h.Workspace.State()))
}

func (h *Handler) addFiles(c *gin.Context) {
	sources, ok := h.readUploads(c)
	if !ok {
		return
	}
	if err := h.Workspace.AddFiles(c.Request.Context(), sources); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "one or more files could not be read", splitErrors(err))
		return
	}
	h.getWorkspace(c)
}

func (h *Handler) removeFile(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "index must be an integer", nil)
		return
	}
	if err := h.Workspace.RemoveFile(index); err != nil {
		switch {
		case errors.Is(err, intake.ErrIndexOutOfRange):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to remove file", nil)
		}
		return
	}
	h.getWorkspace(c)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) setNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	h.Workspace.SetNote(req.Note)
	h.getWorkspace(c)
}

// analyzeWorkspace outlives the request: a dropped connection must not abort the
// shared workspace's run, so only the provider timeout bounds it.
func (h *Handler) analyzeWorkspace(c *gin.Context) {
	if err := h.Workspace.Analyze(context.WithoutCancel(c.Request.Context())); err != nil {
		writeAnalyzeError(c, err)
		return
	}
	h.getWorkspace(c)
}

func (h *Handler) resetWorkspace(c *gin.Context) {
	h.Workspace.Reset()
	h.getWorkspace(c)
}

func (h *Handler) exportWorkspace(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			art export.Artifact
			err error
		)
		if format == "xlsx" {
			art, err = h.Workspace.ExportXLSX(h.Now())
		} else {
			art, err = h.Workspace.ExportPDF(h.Now())
		}
		if err != nil {
			writeExportError(c, err)
			return
		}
		download(c, art)
	}
}

func (h *Handler) readUploads(c *gin.Context) ([]intake.Source, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes*8)
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return nil, false
	}
	headers := append(form.File["files"], form.File["files[]"]...)
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", []map[string]string{
			{"field": "files", "issue": "required"},
		})
		return nil, false
	}
	sources := make([]intake.Source, 0, len(headers))
	for _, fh := range headers {
		sources = append(sources, uploadSource(fh))
	}
	return sources, true
}

func uploadSource(fh *multipart.FileHeader) intake.Source {
	return intake.Source{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func writeAnalyzeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoAttachments):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, "busy", err.Error(), nil)
	case errors.Is(err, llm.ErrConfiguration):
		respond.Error(c, http.StatusServiceUnavailable, "configuration_error", err.Error(), nil)
	case errors.Is(err, llm.ErrProvider):
		respond.Error(c, http.StatusBadGateway, "provider_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", llm.UserMessage(err), nil)
	}
}

func writeExportError(c *gin.Context, err error) {
	var ee *export.ExportError
	switch {
	case errors.Is(err, ErrNoResult):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.As(err, &ee):
		respond.Error(c, http.StatusInternalServerError, "export_error", ee.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "export_error", "failed to export report", nil)
	}
}

func download(c *gin.Context, art export.Artifact) {
	respond.Attachment(c, art.FileName, art.ContentType, art.Body)
}

func splitErrors(err error) []string {
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
