package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/health"
	"github.com/hiver-ai/email-triage/internal/model"
)

// healthProbeID cannot match a stored email under any driver.
const healthProbeID = "__health_check__"

// NewStoreHealthChecker probes the store through HealthPing when the driver
// implements it. Otherwise it looks up an id that cannot exist: a not-found
// answer still proves the store is reachable.
func NewStoreHealthChecker(s Store, log zerolog.Logger, probeTimeout time.Duration) *health.ProbeChecker {
	return health.NewProbeChecker("store", func(ctx context.Context) error {
		if p, ok := s.(health.HealthPinger); ok {
			return p.HealthPing(ctx)
		}
		_, err := s.Emails().GetByID(ctx, healthProbeID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return nil
	}, log, probeTimeout)
}
