package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const defaultProbeTimeout = 2 * time.Second

// ProbeFunc reports a component failure as a non-nil error.
type ProbeFunc func(ctx context.Context) error

// ProbeChecker is a HealthChecker that runs a ProbeFunc on a ticker and
// caches the last result. It reports unhealthy until the first probe passes.
type ProbeChecker struct {
	name    string
	probe   ProbeFunc
	timeout time.Duration
	healthy atomic.Int32
	log     zerolog.Logger
}

func NewProbeChecker(name string, probe ProbeFunc, log zerolog.Logger, probeTimeout time.Duration) *ProbeChecker {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &ProbeChecker{name: name, probe: probe, timeout: probeTimeout, log: log}
}

func (c *ProbeChecker) Name() string    { return c.name }
func (c *ProbeChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start probes once immediately and then on every tick until ctx is done.
func (c *ProbeChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *ProbeChecker) check(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	if err := c.probe(checkCtx); err != nil {
		c.healthy.Store(0)
		c.log.Error().Stack().Str("checker", c.name).Err(err).Msg("health check failed")
		return
	}
	if c.healthy.Swap(1) == 0 {
		c.log.Info().Str("checker", c.name).Msg("health check passing")
	}
}
