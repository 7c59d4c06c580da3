package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Database  DatabaseConfig  `yaml:"database"`
	Security  SecurityConfig  `yaml:"security"`
	Portfolio PortfolioConfig `yaml:"portfolio"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TelegramConfig holds bot-specific configuration.
type TelegramConfig struct {
	Token              string `yaml:"token"`
	PollTimeoutSeconds int    `yaml:"pollTimeoutSeconds"`
	DraftTTLMinutes    int    `yaml:"draftTTLMinutes"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// SecurityConfig holds the credential encryption settings.
type SecurityConfig struct {
	EncryptionKey string `yaml:"encryptionKey"`
}

// PortfolioConfig holds configuration for the aggregation core.
type PortfolioConfig struct {
	QuoteCurrency       string `yaml:"quoteCurrency"`
	FetchTimeoutSeconds int    `yaml:"fetchTimeoutSeconds"`
	ModeRetry           bool   `yaml:"modeRetry"`
}

// AdvisorConfig holds the Gemini advisory settings.
type AdvisorConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// ServerConfig holds the admin HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from a YAML file. Secrets can be supplied
// or overridden through environment variables so the YAML file stays
// committable.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	overrideFromEnv(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	overrideFromEnv(&cfg.Database.URL, "DATABASE_URL")
	overrideFromEnv(&cfg.Security.EncryptionKey, "ENCRYPTION_KEY")
	overrideFromEnv(&cfg.Advisor.APIKey, "GEMINI_API_KEY")

	applyDefaults(&cfg)

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is not set (telegram.token or TELEGRAM_BOT_TOKEN)")
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is not set (database.url or DATABASE_URL)")
	}
	if cfg.Security.EncryptionKey == "" {
		return nil, fmt.Errorf("encryption key is not set (security.encryptionKey or ENCRYPTION_KEY)")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Portfolio.QuoteCurrency == "" {
		cfg.Portfolio.QuoteCurrency = "USDT"
	}
	if cfg.Portfolio.FetchTimeoutSeconds == 0 {
		// Hard ceiling per exchange call, so one unresponsive exchange
		// cannot stall the whole aggregation.
		cfg.Portfolio.FetchTimeoutSeconds = 20
		logrus.Infof("portfolio.fetchTimeoutSeconds not set, defaulting to %d", cfg.Portfolio.FetchTimeoutSeconds)
	}
	if cfg.Telegram.PollTimeoutSeconds == 0 {
		cfg.Telegram.PollTimeoutSeconds = 30
	}
	if cfg.Telegram.DraftTTLMinutes == 0 {
		cfg.Telegram.DraftTTLMinutes = 15
	}
	if cfg.Advisor.Model == "" {
		cfg.Advisor.Model = "gemini-1.5-flash"
		logrus.Infof("advisor.model not set, defaulting to %s", cfg.Advisor.Model)
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
