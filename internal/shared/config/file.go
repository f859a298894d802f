package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional CONFIG_FILE document. Environment variables win over it.
type fileConfig struct {
	Env    string `yaml:"env"`
	Server struct {
		Port              string   `yaml:"port"`
		CORSAllowOrigins  []string `yaml:"corsAllowOrigins"`
		AnalyzeRatePerMin *int     `yaml:"analyzeRatePerMin"`
	} `yaml:"server"`
	LLM struct {
		Provider        string `yaml:"provider"`
		Model           string `yaml:"model"`
		BaseURL         string `yaml:"baseURL"`
		APIKeyEnv       string `yaml:"apiKeyEnv"`
		PromptVersion   string `yaml:"promptVersion"`
		ThinkingBudget  *int   `yaml:"thinkingBudget"`
		SearchGrounding *bool  `yaml:"searchGrounding"`
		Timeout         string `yaml:"timeout"`
	} `yaml:"llm"`
	Intake struct {
		MaxUploadBytes *int `yaml:"maxUploadBytes"`
	} `yaml:"intake"`
	Export struct {
		Dir      string `yaml:"dir"`
		FontFile string `yaml:"fontFile"`
	} `yaml:"export"`
}

func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
