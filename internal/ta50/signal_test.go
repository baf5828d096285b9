package ta50

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/pkg/config"
)

func TestSignal_PureDeadband(t *testing.T) {
	// spec.md §8 scenario 1: p=0.500, spread 0.02, for 60s -> always
	// in_deadband, tau stays ~0.5.
	params := config.DefaultStrategyParams()
	st := &state.State{Tau: 0.5}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var last SignalResult
	for i := 0; i <= 60; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		last = Signal(st, params, 0.500, 0.02, 10, now)
		assert.True(t, last.InDeadband, "step %d should be in deadband", i)
		assert.Equal(t, 0.0, last.E)
	}
	assert.InDelta(t, 0.5, st.Tau, 0.02)
}

func TestSignal_PersistentBullishConvergesTau(t *testing.T) {
	// spec.md §8 scenario 2: constant p=0.60 for H_tau seconds -> tau ~0.75.
	params := config.DefaultStrategyParams()
	st := &state.State{Tau: 0.5}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var last SignalResult
	for i := 1; i <= int(params.HTau); i++ {
		now := base.Add(time.Duration(i) * time.Second)
		last = Signal(st, params, 0.60, 0.02, 10, now)
	}
	assert.InDelta(t, 0.75, st.Tau, 0.02)
	assert.False(t, last.InDeadband)
	assert.Greater(t, last.E, 0.0)
}

func TestSignal_InvariantBounds(t *testing.T) {
	// spec.md §8 invariant 2.
	params := config.DefaultStrategyParams()
	st := &state.State{Tau: 0.5}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	prices := []float64{0.51, 0.55, 0.42, 0.60, 0.38, 0.70, 0.30}
	for i, p := range prices {
		now := base.Add(time.Duration(i) * time.Second)
		res := Signal(st, params, p, 0.01, 10, now)
		assert.GreaterOrEqual(t, st.Tau, 0.0)
		assert.LessOrEqual(t, st.Tau, 1.0)
		assert.GreaterOrEqual(t, res.A, -1.0)
		assert.LessOrEqual(t, res.A, 1.0)
		assert.GreaterOrEqual(t, res.Theta, 0.0)
		assert.LessOrEqual(t, res.Theta, 1.0)
		assert.Greater(t, res.Chi, 0.0)
		assert.LessOrEqual(t, res.Chi, 1.0)
	}
}

func TestRoundToTick(t *testing.T) {
	assert.InDelta(t, 0.45, RoundToTick(0.451, 0.01), 1e-9)
	assert.InDelta(t, 0.46, RoundToTick(0.455, 0.01), 1e-9)
	assert.Equal(t, 2, TickDecimals(0.01))
	assert.Equal(t, 3, TickDecimals(0.001))
}
