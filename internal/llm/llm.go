package llm

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"audit-backend/internal/report"
)

// Attachment is one uploaded document. Data holds the standard base64 encoding of the file bytes.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Request is one audit submission.
type Request struct {
	Attachments []Attachment
	ContextNote string
}

// GenerateInput is what a provider receives for a single structured-output call.
type GenerateInput struct {
	Attachments []Attachment
	Instruction string
	Schema      *Schema
}

// Provider performs exactly one call against a hosted model and returns its raw text payload.
// Transport failures must be returned as-is.
type Provider interface {
	Name() string
	Generate(ctx context.Context, apiKey string, input GenerateInput) ([]byte, error)
}

// Credential resolves the provider secret at call time.
type Credential func() string

// EnvCredential reads the named environment variable on every call.
func EnvCredential(key string) Credential {
	return func() string {
		return strings.TrimSpace(os.Getenv(key))
	}
}

// Client turns an audit request into a Report Model through a Provider.
type Client struct {
	provider      Provider
	credential    Credential
	keyName       string
	promptVersion string
	timeout       time.Duration
	logger        *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithPromptVersion selects the instruction template.
func WithPromptVersion(version string) Option {
	return func(c *Client) { c.promptVersion = version }
}

// WithTimeout bounds each provider call. Zero leaves the call unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client. keyName is the environment variable the credential comes from and
// is only used in the missing-credential message.
func NewClient(provider Provider, credential Credential, keyName string, opts ...Option) *Client {
	if strings.TrimSpace(keyName) == "" {
		keyName = "API_KEY"
	}
	c := &Client{
		provider:      provider,
		credential:    credential,
		keyName:       keyName,
		promptVersion: "v1",
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProviderName reports the configured provider.
func (c *Client) ProviderName() string {
	if c == nil || c.provider == nil {
		return ""
	}
	return c.provider.Name()
}

// Analyze makes one provider call and decodes its payload.
func (c *Client) Analyze(ctx context.Context, req Request) (report.Result, error) {
	apiKey := ""
	if c.credential != nil {
		apiKey = c.credential()
	}
	if apiKey == "" {
		return report.Result{}, &ConfigurationError{
			Message: c.keyName + " is missing. Please ensure it is configured in the environment.",
		}
	}
	if c.provider == nil {
		return report.Result{}, &ConfigurationError{Message: "no analysis provider configured"}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	c.logger.Info("llm.analyze.start",
		"provider", c.provider.Name(),
		"attachments", len(req.Attachments),
		"prompt_version", c.promptVersion,
	)

	payload, err := c.provider.Generate(ctx, apiKey, GenerateInput{
		Attachments: req.Attachments,
		Instruction: BuildInstruction(c.promptVersion, req.ContextNote),
		Schema:      ReportSchema(),
	})
	if err != nil {
		c.logger.Error("llm.analyze.failed", "provider", c.provider.Name(), "error", err)
		return report.Result{}, err
	}
	if len(strings.TrimSpace(string(payload))) == 0 {
		return report.Result{}, &ProviderError{Message: "model failed to generate a response text"}
	}

	result, err := report.Decode(payload)
	if err != nil {
		c.logger.Error("llm.analyze.decode_failed", "provider", c.provider.Name(), "bytes", len(payload), "error", err)
		return report.Result{}, &ProviderError{Message: "model response could not be parsed", Err: err}
	}

	c.logger.Info("llm.analyze.ok",
		"provider", c.provider.Name(),
		"decision", result.Conclusion.Decision,
		"hidden_loans", len(result.HiddenLoans),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
