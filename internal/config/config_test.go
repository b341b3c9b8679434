package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("MINDEE_V2_API_KEY", "mindee-key")
	t.Setenv("MINDEE_MODEL_ID", "model-id")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("default model = %q", cfg.GeminiModel)
	}
	if cfg.Price != "$100" {
		t.Errorf("default price = %q", cfg.Price)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Errorf("default timeout = %v", cfg.HTTPTimeout)
	}
	if cfg.AIHistoryLimit != 0 {
		t.Errorf("default history limit = %d", cfg.AIHistoryLimit)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("INSURANCE_PRICE", "€120")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("AI_HISTORY_LIMIT", "20")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.GeminiModel != "gemini-1.5-pro" || cfg.Price != "€120" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("timeout override = %v", cfg.HTTPTimeout)
	}
	if cfg.AIHistoryLimit != 20 {
		t.Errorf("history limit override = %d", cfg.AIHistoryLimit)
	}
}

func TestFromEnvMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for missing GEMINI_API_KEY")
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	setRequired(t)

	t.Setenv("HTTP_TIMEOUT", "soon")
	if _, err := FromEnv(); err == nil {
		t.Error("expected an error for unparsable HTTP_TIMEOUT")
	}
	t.Setenv("HTTP_TIMEOUT", "")

	t.Setenv("AI_HISTORY_LIMIT", "-1")
	if _, err := FromEnv(); err == nil {
		t.Error("expected an error for negative AI_HISTORY_LIMIT")
	}
}
