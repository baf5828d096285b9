package optimizer

import (
	"math"

	"github.com/mselser95/binarybot/internal/performance"
)

// score resolves the phase's configured metric from a backtest's
// computed performance.Metrics into the single scalar the optimizer
// ranks combinations by (spec.md §4.12).
func score(metric Metric, m performance.Metrics) float64 {
	switch metric {
	case MetricSharpe:
		return m.Sharpe
	case MetricTotalPnL:
		return m.TotalPnL
	case MetricTotalReturn:
		return m.TotalReturn
	case MetricWinRate:
		return m.WinRate
	case MetricProfitFactor:
		return m.ProfitFactor
	case MetricComposite:
		return compositeScore(m)
	default:
		return compositeScore(m)
	}
}

// compositeScore computes S = 0.6*norm(Sharpe,/3) + 0.3*win_rate +
// 0.1*min(profit_factor,5)/5 (spec.md §4.12). Sharpe is normalized by
// dividing by 3 and clamping to [-1, 1] so no single scalar dominates
// the blend regardless of its native scale.
func compositeScore(m performance.Metrics) float64 {
	normSharpe := clamp(m.Sharpe/3.0, -1, 1)
	pf := m.ProfitFactor
	if math.IsInf(pf, 1) {
		pf = 5
	}
	cappedPF := math.Min(pf, 5) / 5

	return 0.6*normSharpe + 0.3*m.WinRate + 0.1*cappedPF
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
