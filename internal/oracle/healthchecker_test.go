package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hiver-ai/email-triage/internal/health"
)

type pingingOracle struct {
	Func
	err error
}

func (p pingingOracle) HealthPing(context.Context) error { return p.err }

// runOnce performs the initial probe only: Start checks once before it
// observes the already-cancelled context.
func runOnce(t *testing.T, hc health.HealthChecker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hc.Start(ctx, time.Hour)
}

func TestHealthChecker_PrefersHealthPing(t *testing.T) {
	var generated atomic.Int32
	o := pingingOracle{Func: func(context.Context, string, Params) (string, error) {
		generated.Add(1)
		return "x", nil
	}}
	hc := NewHealthChecker(o, zerolog.Nop(), time.Second)
	assert.False(t, hc.IsHealthy())
	runOnce(t, hc)
	assert.True(t, hc.IsHealthy())
	assert.Equal(t, int32(0), generated.Load())
}

func TestHealthChecker_PingFailure(t *testing.T) {
	o := pingingOracle{Func: func(context.Context, string, Params) (string, error) { return "x", nil }, err: errors.New("down")}
	hc := NewHealthChecker(o, zerolog.Nop(), time.Second)
	runOnce(t, hc)
	assert.False(t, hc.IsHealthy())
	assert.Equal(t, "oracle", hc.Name())
}

func TestHealthChecker_FallsBackToGenerate(t *testing.T) {
	var gotParams Params
	o := Func(func(_ context.Context, _ string, p Params) (string, error) {
		gotParams = p
		return "pong", nil
	})
	hc := NewHealthChecker(o, zerolog.Nop(), time.Second)
	runOnce(t, hc)
	assert.True(t, hc.IsHealthy())
	assert.Equal(t, 1, gotParams.MaxTokens)
}
