package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port              string
	CORSAllowOrigin   []string
	Env               string
	LLMProvider       string
	LLMModel          string
	LLMBaseURL        string
	LLMAPIKeyEnv      string
	PromptVersion     string
	ThinkingBudget    int
	SearchGrounding   bool
	LLMTimeout        time.Duration
	MaxUploadBytes    int64
	ExportDir         string
	PDFFontFile       string
	AnalyzeRatePerMin int
}

// Load reads configuration from an optional YAML file overlaid by environment variables.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("config file ignored: %v", err)
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", file.LLM.Provider))
	return Config{
		Port:              getEnv("PORT", orDefault(file.Server.Port, "8080")),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", orDefault(strings.Join(file.Server.CORSAllowOrigins, ","), "http://localhost:5173"))),
		Env:               normalizeEnv(getEnv("ENV", orDefault(file.Env, "dev"))),
		LLMProvider:       provider,
		LLMModel:          getEnv("LLM_MODEL", orDefault(file.LLM.Model, defaultModel(provider))),
		LLMBaseURL:        getEnv("LLM_BASE_URL", file.LLM.BaseURL),
		LLMAPIKeyEnv:      getEnv("LLM_API_KEY_ENV", orDefault(file.LLM.APIKeyEnv, "API_KEY")),
		PromptVersion:     getEnv("PROMPT_VERSION", orDefault(file.LLM.PromptVersion, "v1")),
		ThinkingBudget:    getEnvInt("LLM_THINKING_BUDGET", intOrDefault(file.LLM.ThinkingBudget, 32768)),
		SearchGrounding:   getEnvBool("LLM_SEARCH_GROUNDING", boolOrDefault(file.LLM.SearchGrounding, true)),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", durationOrZero(file.LLM.Timeout)),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", intOrDefault(file.Intake.MaxUploadBytes, 20<<20))),
		ExportDir:         getEnv("EXPORT_DIR", orDefault(file.Export.Dir, "./out")),
		PDFFontFile:       getEnv("PDF_FONT_FILE", file.Export.FontFile),
		AnalyzeRatePerMin: getEnvInt("ANALYZE_RATE_PER_MIN", intOrDefault(file.Server.AnalyzeRatePerMin, 6)),
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o"
	}
	return "gemini-3-pro-preview"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config env %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config env %s invalid bool: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config env %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func orDefault(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return val
}

// intOrDefault treats an absent key as unset; an explicit 0 is kept.
func intOrDefault(val *int, def int) int {
	if val == nil {
		return def
	}
	return *val
}

func boolOrDefault(val *bool, def bool) bool {
	if val == nil {
		return def
	}
	return *val
}

func durationOrZero(raw string) time.Duration {
	if strings.TrimSpace(raw) == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config file invalid duration %q: %v", raw, err)
		return 0
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
