package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"audit-backend/internal/llm"
)

const schemaName = "financial_audit"

// Client implements llm.Provider using OpenAI Chat Completions.
type Client struct {
	model   string
	baseURL string
}

// NewClient constructs a new OpenAI provider. baseURL may be empty for the public API.
func NewClient(model, baseURL string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	return &Client{model: model, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}, nil
}

func (c *Client) Name() string { return "openai" }

// Generate sends one chat completion with every attachment as an image part followed by the
// instruction text, and returns the message content.
func (c *Client) Generate(ctx context.Context, apiKey string, input llm.GenerateInput) ([]byte, error) {
	parts := make([]goopenai.ChatMessagePart, 0, len(input.Attachments)+1)
	for _, a := range input.Attachments {
		if !strings.HasPrefix(strings.ToLower(a.MimeType), "image/") {
			return nil, fmt.Errorf("openai provider accepts image attachments only: %s is %s", a.Name, a.MimeType)
		}
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    dataURL(a),
				Detail: goopenai.ImageURLDetailHigh,
			},
		})
	}
	parts = append(parts, goopenai.ChatMessagePart{
		Type: goopenai.ChatMessagePartTypeText,
		Text: input.Instruction,
	})

	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, MultiContent: parts},
		},
		ResponseFormat: responseFormat(input.Schema),
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	resp, err := goopenai.NewClientWithConfig(cfg).CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	logUsage(c.model, resp.Usage)

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return []byte(strings.TrimSpace(resp.Choices[0].Message.Content)), nil
}

func responseFormat(schema *llm.Schema) *goopenai.ChatCompletionResponseFormat {
	if schema == nil {
		return &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}
	raw, err := json.Marshal(schema.JSONSchema())
	if err != nil {
		return &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return &goopenai.ChatCompletionResponseFormat{
		Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
			Name:   schemaName,
			Schema: json.RawMessage(raw),
			Strict: false,
		},
	}
}

func dataURL(a llm.Attachment) string {
	return "data:" + a.MimeType + ";base64," + a.Data
}

func logUsage(model string, usage goopenai.Usage) {
	log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

var _ llm.Provider = (*Client)(nil)
