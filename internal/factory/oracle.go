package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/config"
	"github.com/hiver-ai/email-triage/internal/health"
	"github.com/hiver-ai/email-triage/internal/oracle"
	"github.com/hiver-ai/email-triage/internal/oracle/ollama"
	"github.com/hiver-ai/email-triage/internal/oracle/openai"
)

// NewOracle creates the text-generation client selected by cfg.OracleProvider.
// Launches an async reachability check; returns immediately for fast startup.
func NewOracle(ctx context.Context, cfg *config.Config, log zerolog.Logger) (oracle.Oracle, error) {
	var o oracle.Oracle
	switch cfg.OracleProvider {
	case "openai":
		if cfg.OracleAPIKey == "" {
			log.Warn().Msg("EMAIL_TRIAGE_ORACLE_API_KEY is empty; classification will fall back")
		}
		o = openai.New(cfg.OracleURL, cfg.OracleAPIKey, cfg.OracleModel, cfg.OracleTimeout())
	case "ollama":
		o = ollama.New(cfg.OracleURL, cfg.OracleModel, cfg.OracleTimeout())
	default:
		return nil, fmt.Errorf("unknown ORACLE_PROVIDER: %s", cfg.OracleProvider)
	}

	go func() {
		warmupTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		if warmupTimeout <= 0 {
			warmupTimeout = 10 * time.Second
		}
		warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
		defer cancel()

		p, ok := o.(health.HealthPinger)
		if !ok {
			return
		}
		if err := p.HealthPing(warmupCtx); err != nil {
			log.Warn().Err(err).
				Str("provider", cfg.OracleProvider).Str("model", cfg.OracleModel).
				Msg("oracle warmup check failed")
		} else {
			log.Debug().Str("provider", cfg.OracleProvider).Str("model", cfg.OracleModel).
				Msg("oracle warmup check completed")
		}
	}()

	return o, nil
}
