package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("EMAIL_TRIAGE_DB_DRIVER", "")
	t.Setenv("EMAIL_TRIAGE_ORACLE_PROVIDER", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.DBDriver)
	assert.Equal(t, "openai", cfg.OracleProvider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OracleURL)
	assert.Equal(t, "hiver_ai", cfg.MongoDatabase)
	assert.Equal(t, 30*time.Second, cfg.OracleTimeout())
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.False(t, cfg.IMAPEnabled())
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("EMAIL_TRIAGE_DB_DRIVER", "sqlite")
	t.Setenv("EMAIL_TRIAGE_ORACLE_PROVIDER", "ollama")
	t.Setenv("EMAIL_TRIAGE_HTTP_PORT", "9191")
	t.Setenv("EMAIL_TRIAGE_IMAP_ADDR", "imap.example.com:993")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "http://localhost:11434", cfg.OracleURL)
	assert.Equal(t, 9191, cfg.HTTPPort)
	assert.True(t, cfg.IMAPEnabled())
}

func TestResolveDefaults_Rejects(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "cassandra"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.OracleProvider = "magic"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.ResolveDefaults())
}
