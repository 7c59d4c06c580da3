package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
telegram:
  token: "123:abc"
database:
  url: "postgres://localhost/cryptovision"
security:
  encryptionKey: "0123456789abcdef0123456789abcdef"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Portfolio.QuoteCurrency != "USDT" {
		t.Errorf("quote default = %q", cfg.Portfolio.QuoteCurrency)
	}
	if cfg.Portfolio.FetchTimeoutSeconds != 20 {
		t.Errorf("fetch timeout default = %d", cfg.Portfolio.FetchTimeoutSeconds)
	}
	if cfg.Telegram.PollTimeoutSeconds != 30 || cfg.Telegram.DraftTTLMinutes != 15 {
		t.Errorf("telegram defaults = %+v", cfg.Telegram)
	}
	if cfg.Advisor.Model != "gemini-1.5-flash" {
		t.Errorf("advisor model default = %q", cfg.Advisor.Model)
	}
	if cfg.Server.Port != ":8080" {
		t.Errorf("server port default = %q", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level default = %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("ENCRYPTION_KEY", "env-key-0123456789abcdef0123456")
	t.Setenv("GEMINI_API_KEY", "env-gemini")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Telegram.Token != "env-token" {
		t.Errorf("token override failed: %q", cfg.Telegram.Token)
	}
	if cfg.Database.URL != "postgres://env/db" {
		t.Errorf("database override failed: %q", cfg.Database.URL)
	}
	if cfg.Security.EncryptionKey != "env-key-0123456789abcdef0123456" {
		t.Errorf("key override failed")
	}
	if cfg.Advisor.APIKey != "env-gemini" {
		t.Errorf("gemini override failed")
	}
}

func TestLoadConfigMissingSecrets(t *testing.T) {
	// Keep the environment from satisfying validation.
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENCRYPTION_KEY", "")

	if _, err := LoadConfig(writeConfig(t, `telegram: {token: ""}`)); err == nil {
		t.Error("missing token must fail validation")
	}

	partial := `
telegram:
  token: "123:abc"
database:
  url: "postgres://localhost/db"
`
	if _, err := LoadConfig(writeConfig(t, partial)); err == nil {
		t.Error("missing encryption key must fail validation")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file must fail")
	}
}
