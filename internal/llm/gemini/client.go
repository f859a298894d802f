package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"audit-backend/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client implements llm.Provider against the Gemini generateContent endpoint.
type Client struct {
	baseURL         string
	model           string
	thinkingBudget  int
	searchGrounding bool
	httpClient      *http.Client
}

// Config controls request shaping.
type Config struct {
	BaseURL         string
	Model           string
	ThinkingBudget  int
	SearchGrounding bool
}

// NewClient constructs a Gemini client. The HTTP client has no timeout of its own; callers bound
// calls through the context.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:         base,
		model:           cfg.Model,
		thinkingBudget:  cfg.ThinkingBudget,
		searchGrounding: cfg.SearchGrounding,
		httpClient:      &http.Client{},
	}, nil
}

func (c *Client) Name() string { return "gemini" }

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
	Thought    bool        `json:"thought,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   map[string]any  `json:"responseSchema,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	Tools            []tool           `json:"tools,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		ThoughtsTokenCount   int `json:"thoughtsTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini api error %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini api error %d: %s", e.StatusCode, e.Message)
}

// Generate makes one generateContent call and returns the text of the first candidate.
// An answer without text yields an empty payload and no error.
func (c *Client) Generate(ctx context.Context, apiKey string, input llm.GenerateInput) ([]byte, error) {
	reqBody := c.buildRequest(input)
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var parsed errorResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			apiErr.Status = parsed.Error.Status
			apiErr.Message = parsed.Error.Message
		}
		return nil, apiErr
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gemini response parse: %w", err)
	}
	logUsage(c.model, parsed)
	return []byte(responseText(parsed)), nil
}

func logUsage(model string, resp generateResponse) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		log.Printf("gemini prompt blocked model=%s reason=%s", model, resp.PromptFeedback.BlockReason)
	}
	if resp.UsageMetadata == nil {
		log.Printf("llm response model=%s", model)
		return
	}
	u := resp.UsageMetadata
	log.Printf("llm response model=%s prompt_tokens=%d candidate_tokens=%d thought_tokens=%d total_tokens=%d",
		model, u.PromptTokenCount, u.CandidatesTokenCount, u.ThoughtsTokenCount, u.TotalTokenCount)
}

func (c *Client) buildRequest(input llm.GenerateInput) generateRequest {
	parts := make([]part, 0, len(input.Attachments)+1)
	for _, a := range input.Attachments {
		parts = append(parts, part{InlineData: &inlineData{MimeType: a.MimeType, Data: a.Data}})
	}
	parts = append(parts, part{Text: input.Instruction})

	req := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
		},
	}
	if input.Schema != nil {
		req.GenerationConfig.ResponseSchema = input.Schema.GeminiSchema()
	}
	if c.thinkingBudget > 0 {
		req.GenerationConfig.ThinkingConfig = &thinkingConfig{ThinkingBudget: c.thinkingBudget}
	}
	if c.searchGrounding {
		req.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	return req
}

func responseText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

var _ llm.Provider = (*Client)(nil)
