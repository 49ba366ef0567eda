package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, oracle).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker aggregates the required component checkers into a
// single service health flag. Advisory checkers are reported but never pull
// the service down.
type ServiceHealthChecker struct {
	healthy  atomic.Int32
	deps     []HealthChecker
	advisory []HealthChecker
	log      zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	h := &ServiceHealthChecker{deps: deps, log: log}
	h.healthy.Store(0)
	return h
}

// WithAdvisory registers checkers that appear in Components but do not
// affect IsHealthy.
func (h *ServiceHealthChecker) WithAdvisory(checkers ...HealthChecker) *ServiceHealthChecker {
	h.advisory = append(h.advisory, checkers...)
	return h
}

// IsHealthy reads the cached component flags directly, so a component that
// turns healthy is reflected before the aggregator's next tick.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.depsHealthy() }

func (h *ServiceHealthChecker) depsHealthy() bool {
	for _, c := range h.deps {
		if !c.IsHealthy() {
			return false
		}
	}
	return true
}

// Components returns the cached state of every registered checker by name.
func (h *ServiceHealthChecker) Components() map[string]bool {
	out := make(map[string]bool, len(h.deps)+len(h.advisory))
	for _, c := range h.deps {
		out[c.Name()] = c.IsHealthy()
	}
	for _, c := range h.advisory {
		out[c.Name()] = c.IsHealthy()
	}
	return out
}

// Start periodically evaluates dependency health and logs UP/DOWN transitions.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(0)
	eval := func() {
		if h.depsHealthy() {
			h.healthy.Store(1)
		} else {
			h.healthy.Store(0)
		}
		cur := h.healthy.Load()
		if cur != prev {
			if cur == 1 {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Stack().Msg("service health: DOWN")
			}
			prev = cur
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
