package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration loaded from the environment.
type Config struct {
	TelegramToken string // Telegram Bot API token
	MindeeAPIKey  string // Mindee V2 API key for document extraction
	MindeeModelID string // Mindee model to run documents through
	GeminiAPIKey  string // Gemini API key for the AI side-channel
	GeminiModel   string // Gemini model name

	Price string // Fixed insurance price shown to the user, e.g. "$100"

	// HTTPTimeout bounds every external service call so a hung provider
	// cannot suspend a user's event handling forever.
	HTTPTimeout time.Duration

	// AIHistoryLimit caps how many stored turns are sent to the model per
	// request. 0 sends the full history.
	AIHistoryLimit int
}

// FromEnv builds a Config from environment variables.
// Callers typically load a .env file first (see cmd/bot).
func FromEnv() (*Config, error) {
	cfg := &Config{
		GeminiModel:    "gemini-2.0-flash",
		Price:          "$100",
		HTTPTimeout:    60 * time.Second,
		AIHistoryLimit: 0,
	}

	var err error
	if cfg.TelegramToken, err = required("TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.MindeeAPIKey, err = required("MINDEE_V2_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.MindeeModelID, err = required("MINDEE_MODEL_ID"); err != nil {
		return nil, err
	}
	if cfg.GeminiAPIKey, err = required("GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("INSURANCE_PRICE"); v != "" {
		cfg.Price = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("AI_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid AI_HISTORY_LIMIT: %q", v)
		}
		cfg.AIHistoryLimit = n
	}

	return cfg, nil
}

func required(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return v, nil
}
