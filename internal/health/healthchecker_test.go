package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeChecker struct {
	name    string
	healthy atomic.Int32
}

func (f *fakeChecker) Name() string                               { return f.name }
func (f *fakeChecker) IsHealthy() bool                            { return f.healthy.Load() == 1 }
func (f *fakeChecker) Start(ctx context.Context, _ time.Duration) {}

func TestServiceHealthChecker_Transitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeChecker{name: "store"}
	store.healthy.Store(1)

	svc := NewServiceHealthChecker(zerolog.Nop(), store)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, func() bool { return svc.IsHealthy() })

	store.healthy.Store(0)
	waitTrue(t, func() bool { return !svc.IsHealthy() })

	store.healthy.Store(1)
	waitTrue(t, func() bool { return svc.IsHealthy() })
}

func TestServiceHealthChecker_ReflectsComponentBeforeNextTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeChecker{name: "store"}
	svc := NewServiceHealthChecker(zerolog.Nop(), store)
	go svc.Start(ctx, time.Hour)

	if svc.IsHealthy() {
		t.Fatalf("expected unhealthy before the store's first probe")
	}
	store.healthy.Store(1)
	if !svc.IsHealthy() {
		t.Fatalf("expected healthy as soon as the store reports healthy")
	}
}

func TestServiceHealthChecker_AdvisoryDoesNotGate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeChecker{name: "store"}
	store.healthy.Store(1)
	oracle := &fakeChecker{name: "oracle"}

	svc := NewServiceHealthChecker(zerolog.Nop(), store).WithAdvisory(oracle)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, func() bool { return svc.IsHealthy() })

	comps := svc.Components()
	if !comps["store"] || comps["oracle"] {
		t.Fatalf("unexpected components: %v", comps)
	}
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
