package providers

import (
	"audit-backend/internal/llm"
	"audit-backend/internal/llm/gemini"
	"audit-backend/internal/llm/openai"
	"audit-backend/internal/shared/config"
	"audit-backend/internal/shared/telemetry"
)

// New builds the analysis client for the configured provider.
func New(cfg config.Config) (*llm.Client, error) {
	var provider llm.Provider
	switch cfg.LLMProvider {
	case "openai":
		p, err := openai.NewClient(cfg.LLMModel, cfg.LLMBaseURL)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		p, err := gemini.NewClient(gemini.Config{
			BaseURL:         cfg.LLMBaseURL,
			Model:           cfg.LLMModel,
			ThinkingBudget:  cfg.ThinkingBudget,
			SearchGrounding: cfg.SearchGrounding,
		})
		if err != nil {
			return nil, err
		}
		provider = p
	}

	return llm.NewClient(provider, llm.EnvCredential(cfg.LLMAPIKeyEnv), cfg.LLMAPIKeyEnv,
		llm.WithPromptVersion(cfg.PromptVersion),
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithLogger(telemetry.Logger()),
	), nil
}
