// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Provider selection
	Provider string // "gemini" or "openai"

	// Gemini Configuration
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// OpenAI-compatible Configuration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Performance Configuration
	Timeout time.Duration
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
		if c.GeminiModel == "" {
			return fmt.Errorf("gemini model is required")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
		if c.OpenAIModel == "" {
			return fmt.Errorf("openai model is required")
		}
	default:
		return fmt.Errorf("unknown completion provider %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:      ProviderGemini,
		GeminiBaseURL: "https://generativelanguage.googleapis.com",
		GeminiModel:   "gemini-2.5-flash",
		OpenAIModel:   "gpt-4o-mini",
		Timeout:       2 * time.Minute,
	}
}
