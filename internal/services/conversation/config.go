// File: internal/services/conversation/config.go
package conversation

import "fmt"

type Config struct {
	// Title Configuration
	TitlePrefix string // Prepended to the creation timestamp
	TitleLayout string // time.Format layout used for generated titles

	// Limits
	MaxTurnLength int // Maximum characters in a single turn
}

func (c *Config) Validate() error {
	if c.TitleLayout == "" {
		return fmt.Errorf("title_layout is required")
	}
	if c.MaxTurnLength <= 0 {
		return fmt.Errorf("max_turn_length must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		TitlePrefix:   "New chat: ",
		TitleLayout:   "2006-01-02 15:04",
		MaxTurnLength: 100000,
	}
}
