// File: internal/services/telegram/config.go
package telegram

import (
	"fmt"
	"time"
)

type Config struct {
	Token     string
	BaseURL   string
	ParseMode string // Telegram formatting mode for outbound text

	// Performance Configuration
	Timeout time.Duration
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://api.telegram.org",
		ParseMode: "Markdown",
		Timeout:   30 * time.Second,
	}
}
