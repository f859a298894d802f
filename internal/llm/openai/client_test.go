package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"audit-backend/internal/llm"
)

func TestGenerateSendsImagesAndSchema(t *testing.T) {
	var mu sync.Mutex
	var lastBody map[string]any
	var lastAuth, lastPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		lastBody = payload
		lastAuth = r.Header.Get("Authorization")
		lastPath = r.URL.Path
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" {\"conclusion\":{\"decision\":\"Reject\"}} "},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	client, err := NewClient("gpt-4o", server.URL+"/v1")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := client.Generate(context.Background(), "test-key", llm.GenerateInput{
		Attachments: []llm.Attachment{{Name: "slip.png", MimeType: "image/png", Data: "iVBORw0="}},
		Instruction: "audit",
		Schema:      llm.ReportSchema(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(out) != `{"conclusion":{"decision":"Reject"}}` {
		t.Fatalf("unexpected content %q", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if lastPath != "/v1/chat/completions" {
		t.Fatalf("unexpected path %q", lastPath)
	}
	if lastAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", lastAuth)
	}
	messages := lastBody["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("expected image + text parts, got %d", len(content))
	}
	image := content[0].(map[string]any)["image_url"].(map[string]any)
	if image["url"] != "data:image/png;base64,iVBORw0=" {
		t.Fatalf("unexpected image url %v", image["url"])
	}
	if content[1].(map[string]any)["text"] != "audit" {
		t.Fatalf("expected instruction last")
	}
	format := lastBody["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("unexpected response format %v", format)
	}
	schema := format["json_schema"].(map[string]any)
	if schema["name"] != schemaName {
		t.Fatalf("unexpected schema name %v", schema["name"])
	}
	if schema["schema"].(map[string]any)["type"] != "object" {
		t.Fatalf("expected JSON Schema dialect")
	}
}

func TestGenerateRejectsDocumentsBeforeCall(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client, _ := NewClient("gpt-4o", server.URL+"/v1")
	_, err := client.Generate(context.Background(), "k", llm.GenerateInput{
		Attachments: []llm.Attachment{{Name: "statement.pdf", MimeType: "application/pdf", Data: "JVBERi0="}},
	})
	if err == nil || !strings.Contains(err.Error(), "statement.pdf") {
		t.Fatalf("expected rejection naming the file, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no network call, got %d", calls)
	}
}

func TestGenerateAPIErrorPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client, _ := NewClient("gpt-4o", server.URL+"/v1")
	_, err := client.Generate(context.Background(), "bad", llm.GenerateInput{Instruction: "x"})
	var apiErr *goopenai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected go-openai APIError, got %v", err)
	}
	if apiErr.HTTPStatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", apiErr.HTTPStatusCode)
	}
}

func TestNewClientRequiresModel(t *testing.T) {
	if _, err := NewClient(" ", ""); err == nil {
		t.Fatalf("expected error for empty model")
	}
}
