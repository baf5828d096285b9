package performance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/pkg/types"
)

func eqPoint(t time.Time, equity float64) backtest.EquityPoint {
	return backtest.EquityPoint{Timestamp: t, Equity: equity}
}

func TestCompute_TotalPnLAndReturn(t *testing.T) {
	base := time.Now()
	equity := []backtest.EquityPoint{eqPoint(base, 1000), eqPoint(base.Add(time.Minute), 1100)}

	m := Compute(1000, equity, nil)
	assert.InDelta(t, 100, m.TotalPnL, 1e-9)
	assert.InDelta(t, 10, m.TotalReturn, 1e-9)
}

func TestCompute_MaxDrawdownBoundedZeroToHundred(t *testing.T) {
	base := time.Now()
	equity := []backtest.EquityPoint{
		eqPoint(base, 1000),
		eqPoint(base.Add(time.Minute), 1200),
		eqPoint(base.Add(2*time.Minute), 600),
		eqPoint(base.Add(3*time.Minute), 900),
	}

	m := Compute(1000, equity, nil)
	assert.GreaterOrEqual(t, m.MaxDrawdown, 0.0)
	assert.LessOrEqual(t, m.MaxDrawdown, 100.0)
	assert.InDelta(t, 50, m.MaxDrawdown, 0.01) // (1200-600)/1200 = 50%
}

func TestCompute_WinRateAndProfitFactor(t *testing.T) {
	trades := []types.Trade{
		{Side: types.Sell, PnL: 10},
		{Side: types.Sell, PnL: -5},
		{Side: types.Sell, PnL: 20},
		{Side: types.Buy, PnL: 0}, // ignored, not a sell
	}

	m := Compute(1000, nil, trades)
	assert.InDelta(t, 2.0/3.0, m.WinRate, 1e-9)
	assert.InDelta(t, 30.0/5.0, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 20, m.MaxWin, 1e-9)
	assert.InDelta(t, -5, m.MaxLoss, 1e-9)
}

func TestCompute_ProfitFactorInfiniteWhenNoLosses(t *testing.T) {
	trades := []types.Trade{{Side: types.Sell, PnL: 5}, {Side: types.Sell, PnL: 3}}
	m := Compute(1000, nil, trades)
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
}

func TestCompute_ProfitFactorZeroWhenNoWins(t *testing.T) {
	m := Compute(1000, nil, nil)
	assert.Equal(t, 0.0, m.ProfitFactor)
}

func TestCompute_SharpeZeroWhenFlatEquity(t *testing.T) {
	base := time.Now()
	equity := []backtest.EquityPoint{eqPoint(base, 1000), eqPoint(base.Add(time.Minute), 1000), eqPoint(base.Add(2*time.Minute), 1000)}
	m := Compute(1000, equity, nil)
	assert.Equal(t, 0.0, m.Sharpe)
}

func TestCompute_SharpePositiveForSteadyGains(t *testing.T) {
	base := time.Now()
	var equity []backtest.EquityPoint
	e := 1000.0
	for i := 0; i < 20; i++ {
		equity = append(equity, eqPoint(base.Add(time.Duration(i)*time.Minute), e))
		e *= 1.001
	}
	m := Compute(1000, equity, nil)
	assert.Greater(t, m.Sharpe, 0.0)
}
