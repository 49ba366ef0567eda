package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeChecker_StartsUnhealthy(t *testing.T) {
	c := NewProbeChecker("store", func(context.Context) error { return nil }, zerolog.Nop(), 0)
	assert.False(t, c.IsHealthy())
	assert.Equal(t, "store", c.Name())
	assert.Equal(t, defaultProbeTimeout, c.timeout)
}

func TestProbeChecker_TracksProbeResult(t *testing.T) {
	var failing atomic.Bool
	c := NewProbeChecker("oracle", func(context.Context) error {
		if failing.Load() {
			return errors.New("unreachable")
		}
		return nil
	}, zerolog.Nop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx, 5*time.Millisecond)

	require.Eventually(t, c.IsHealthy, time.Second, 5*time.Millisecond)
	failing.Store(true)
	require.Eventually(t, func() bool { return !c.IsHealthy() }, time.Second, 5*time.Millisecond)
	failing.Store(false)
	require.Eventually(t, c.IsHealthy, time.Second, 5*time.Millisecond)
}

func TestProbeChecker_ProbeHasDeadline(t *testing.T) {
	var hadDeadline atomic.Bool
	c := NewProbeChecker("store", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	}, zerolog.Nop(), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx, time.Hour)

	assert.True(t, hadDeadline.Load())
	assert.True(t, c.IsHealthy())
}
