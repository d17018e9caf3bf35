// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	Environment  string
	DatabasePath string

	// Telegram transport
	TelegramToken   string
	TelegramBaseURL string

	// Completion API
	CompletionProvider string
	CompletionTimeout  int // seconds
	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
}

// Load reads configuration from environment variables or .env file. The
// struct is built once at startup and passed by reference; core logic
// never reads ambient environment state.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        env,
		DatabasePath:       getEnv("DATABASE_PATH", "bot_chats.db"),
		TelegramToken:      getEnv("TELEGRAM_TOKEN", ""),
		TelegramBaseURL:    getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		CompletionProvider: getEnv("COMPLETION_PROVIDER", "gemini"),
		CompletionTimeout:  getEnvAsInt("COMPLETION_TIMEOUT_SECONDS", 120),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.TelegramToken == "" {
			missing = append(missing, "TELEGRAM_TOKEN")
		}
		switch cfg.CompletionProvider {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				missing = append(missing, "GEMINI_API_KEY")
			}
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				missing = append(missing, "OPENAI_API_KEY")
			}
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
