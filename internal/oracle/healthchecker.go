package oracle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/health"
)

// NewHealthChecker pings providers that expose HealthPing and otherwise
// attempts a one-token generation.
func NewHealthChecker(o Oracle, log zerolog.Logger, probeTimeout time.Duration) *health.ProbeChecker {
	return health.NewProbeChecker("oracle", func(ctx context.Context) error {
		if p, ok := o.(health.HealthPinger); ok {
			return p.HealthPing(ctx)
		}
		_, err := o.Generate(ctx, "ping", Params{MaxTokens: 1})
		return err
	}, log, probeTimeout)
}
