package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the triage service
// Environment variables are automatically parsed from EMAIL_TRIAGE_ prefix
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store driver: mongo, postgres or sqlite
	DBDriver string `envconfig:"DB_DRIVER" default:"mongo"`

	MongoURI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"hiver_ai"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"emails"`

	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"email-triage.db"`

	// Oracle (text generation) Configuration
	OracleProvider       string `envconfig:"ORACLE_PROVIDER" default:"openai"`
	OracleURL            string `envconfig:"ORACLE_URL" default:""`
	OracleAPIKey         string `envconfig:"ORACLE_API_KEY" default:""`
	OracleModel          string `envconfig:"ORACLE_MODEL" default:"gpt-3.5-turbo"`
	OracleTimeoutSeconds int    `envconfig:"ORACLE_TIMEOUT_SECONDS" default:"30"`

	// Health and bootstrap
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"10"`

	// IMAP intake; disabled when IMAPAddr is empty
	IMAPAddr        string `envconfig:"IMAP_ADDR" default:""`
	IMAPUser        string `envconfig:"IMAP_USER" default:""`
	IMAPPassword    string `envconfig:"IMAP_PASSWORD" default:""`
	IMAPMailbox     string `envconfig:"IMAP_MAILBOX" default:"INBOX"`
	IMAPPollSeconds int    `envconfig:"IMAP_POLL_SECONDS" default:"60"`
}

var (
	allowedDrivers   = map[string]bool{"mongo": true, "postgres": true, "sqlite": true}
	allowedProviders = map[string]bool{"openai": true, "ollama": true}
)

// ResolveDefaults validates the store driver and oracle provider and fills in
// provider-specific defaults.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" {
		c.DBDriver = "mongo"
	}
	if !allowedDrivers[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.OracleProvider == "" {
		c.OracleProvider = "openai"
	}
	if !allowedProviders[c.OracleProvider] {
		return fmt.Errorf("unsupported ORACLE_PROVIDER: %s", c.OracleProvider)
	}
	if c.OracleURL == "" {
		switch c.OracleProvider {
		case "openai":
			c.OracleURL = "https://api.openai.com/v1"
		case "ollama":
			c.OracleURL = "http://localhost:11434"
		}
	}
	if c.OracleTimeoutSeconds <= 0 {
		c.OracleTimeoutSeconds = 30
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("EMAIL_TRIAGE_POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with EMAIL_TRIAGE_
// Example: EMAIL_TRIAGE_DB_DRIVER, EMAIL_TRIAGE_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("EMAIL_TRIAGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("oracle_provider", cfg.OracleProvider).
		Str("oracle_model", cfg.OracleModel).
		Int("oracle_timeout_s", cfg.OracleTimeoutSeconds).
		Bool("oracle_key_present", cfg.OracleAPIKey != "").
		Bool("imap_enabled", cfg.IMAPEnabled()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		HTTPPort:    8080,
		DBDriver:    "sqlite",
		SQLitePath:  ":memory:",

		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "hiver_ai_test",
		MongoCollection: "emails",

		OracleProvider:       "ollama",
		OracleURL:            "http://localhost:11434",
		OracleModel:          "llama3",
		OracleTimeoutSeconds: 5,

		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   1,

		IMAPMailbox:     "INBOX",
		IMAPPollSeconds: 60,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IMAPEnabled reports whether the mailbox poller should run.
func (c *Config) IMAPEnabled() bool {
	return c.IMAPAddr != ""
}

// OracleTimeout is the deadline applied to every oracle call.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutSeconds) * time.Second
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
