package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
)

type fakeProvider struct {
	calls   int
	apiKey  string
	input   GenerateInput
	payload []byte
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, apiKey string, input GenerateInput) ([]byte, error) {
	f.calls++
	f.apiKey = apiKey
	f.input = input
	return f.payload, f.err
}

func staticKey(key string) Credential { return func() string { return key } }

func TestAnalyzeMissingCredential(t *testing.T) {
	provider := &fakeProvider{payload: []byte(`{}`)}
	client := NewClient(provider, staticKey(""), "API_KEY")

	_, err := client.Analyze(context.Background(), Request{Attachments: []Attachment{{Name: "a.pdf"}}})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration sentinel match")
	}
	if cfgErr.Error() != "API_KEY is missing. Please ensure it is configured in the environment." {
		t.Fatalf("unexpected message %q", cfgErr.Error())
	}
	if provider.calls != 0 {
		t.Fatalf("expected no provider call, got %d", provider.calls)
	}
}

func TestAnalyzeReadsCredentialAtCallTime(t *testing.T) {
	t.Setenv("AUDIT_TEST_KEY", "")
	provider := &fakeProvider{payload: []byte(`{}`)}
	client := NewClient(provider, EnvCredential("AUDIT_TEST_KEY"), "AUDIT_TEST_KEY")

	if _, err := client.Analyze(context.Background(), Request{}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error before key is set, got %v", err)
	}

	t.Setenv("AUDIT_TEST_KEY", "secret")
	if _, err := client.Analyze(context.Background(), Request{}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if provider.apiKey != "secret" {
		t.Fatalf("expected key passed to provider, got %q", provider.apiKey)
	}
}

func TestAnalyzeEmptyPayload(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte("  \n")} {
		provider := &fakeProvider{payload: payload}
		client := NewClient(provider, staticKey("k"), "")

		_, err := client.Analyze(context.Background(), Request{})
		var provErr *ProviderError
		if !errors.As(err, &provErr) {
			t.Fatalf("expected ProviderError, got %v", err)
		}
		if !errors.Is(err, ErrProvider) {
			t.Fatalf("expected ErrProvider sentinel match")
		}
		if provider.calls != 1 {
			t.Fatalf("expected exactly one call, got %d", provider.calls)
		}
	}
}

func TestAnalyzeUnparseablePayload(t *testing.T) {
	provider := &fakeProvider{payload: []byte("Sorry, I cannot help with that.")}
	client := NewClient(provider, staticKey("k"), "")

	_, err := client.Analyze(context.Background(), Request{})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Unwrap() == nil {
		t.Fatalf("expected wrapped parse error")
	}
}

func TestAnalyzeTransportErrorPassesThrough(t *testing.T) {
	transport := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	provider := &fakeProvider{err: transport}
	client := NewClient(provider, staticKey("k"), "")

	_, err := client.Analyze(context.Background(), Request{})
	if err != transport {
		t.Fatalf("expected transport error unchanged, got %v", err)
	}
	if errors.Is(err, ErrProvider) || errors.Is(err, ErrConfiguration) {
		t.Fatalf("transport error must not be classified")
	}
}

func TestAnalyzeBuildsOneRequest(t *testing.T) {
	provider := &fakeProvider{payload: []byte(`{"conclusion":{"decision":"Approve","monthlyRepayment":"RM 450.00"}}`)}
	client := NewClient(provider, staticKey("k"), "")
	attachments := []Attachment{
		{Name: "statement.pdf", MimeType: "application/pdf", Data: "JVBERi0="},
		{Name: "payslip.png", MimeType: "image/png", Data: "iVBORw0="},
	}

	result, err := client.Analyze(context.Background(), Request{Attachments: attachments})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected one call, got %d", provider.calls)
	}
	if len(provider.input.Attachments) != 2 || provider.input.Attachments[1].Name != "payslip.png" {
		t.Fatalf("unexpected attachments %+v", provider.input.Attachments)
	}
	if !strings.Contains(provider.input.Instruction, "None provided.") {
		t.Fatalf("expected empty note placeholder in instruction")
	}
	if provider.input.Schema == nil {
		t.Fatalf("expected schema")
	}
	if result.Conclusion.MonthlyRepayment != "RM 450.00" || result.HiddenLoans == nil {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(errors.New("")); got != genericFailure {
		t.Fatalf("expected generic fallback, got %q", got)
	}
	if got := UserMessage(&ProviderError{Message: "model failed to generate a response text"}); got != "model failed to generate a response text" {
		t.Fatalf("unexpected message %q", got)
	}
	if UserMessage(nil) != "" {
		t.Fatalf("expected empty message for nil")
	}
}

func TestBuildInstruction(t *testing.T) {
	got := BuildInstruction("v1", "  Suspect ABC Capital  ")
	if !strings.Contains(got, "Suspect ABC Capital\n") {
		t.Fatalf("expected trimmed note in instruction")
	}
	if strings.Contains(got, "{{CONTEXT_NOTE}}") {
		t.Fatalf("placeholder not replaced")
	}
	if BuildInstruction("v9", "") != BuildInstruction("v1", "") {
		t.Fatalf("expected unknown version to fall back to v1")
	}
}
