package providers

import (
	"testing"

	"audit-backend/internal/shared/config"
)

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{provider: "gemini", model: "gemini-3-pro-preview", want: "gemini"},
		{provider: "openai", model: "gpt-4o", want: "openai"},
	}
	for _, tt := range tests {
		client, err := New(config.Config{LLMProvider: tt.provider, LLMModel: tt.model, LLMAPIKeyEnv: "API_KEY"})
		if err != nil {
			t.Fatalf("New(%s): %v", tt.provider, err)
		}
		if got := client.ProviderName(); got != tt.want {
			t.Fatalf("ProviderName = %q, want %q", got, tt.want)
		}
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(config.Config{LLMProvider: "gemini"}); err == nil {
		t.Fatalf("expected error without model")
	}
}
