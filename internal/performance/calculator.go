// Package performance derives summary statistics from a completed
// backtest run's trade list and equity series (spec.md §4.11 "Metrics
// Calculator"). Grounded on the teacher's pkg/types statistics helpers
// for the shape of a pure, side-effect-free metrics struct computed
// from a slice of domain records.
package performance

import (
	"math"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/pkg/types"
)

// Metrics is the full set of derived statistics for one backtest run
// (spec.md §4.11).
type Metrics struct {
	TotalPnL     float64
	TotalReturn  float64 // percent
	Sharpe       float64
	MaxDrawdown  float64 // percent, in [0, 100]
	WinRate      float64
	ProfitFactor float64 // +Inf if no losses and any wins, 0 if no wins
	AvgTradePnL  float64
	MaxWin       float64
	MaxLoss      float64
	SampleCount  int
}

// Compute derives Metrics from a run's equity series and trade list.
// initialCapital anchors total_pnl/total_return; equity and trades come
// straight from a backtest.RunResult.
func Compute(initialCapital float64, equity []backtest.EquityPoint, trades []types.Trade) Metrics {
	m := Metrics{}

	finalEquity := initialCapital
	if len(equity) > 0 {
		finalEquity = equity[len(equity)-1].Equity
	}
	m.TotalPnL = finalEquity - initialCapital
	if initialCapital != 0 {
		m.TotalReturn = m.TotalPnL / initialCapital * 100
	}

	m.Sharpe = sharpe(equity)
	m.MaxDrawdown = maxDrawdownPct(equity)

	sellPnLs := sellTradePnLs(trades)
	m.SampleCount = len(sellPnLs)
	m.WinRate = winRate(sellPnLs)
	m.ProfitFactor = profitFactor(sellPnLs)
	m.AvgTradePnL, m.MaxWin, m.MaxLoss = pnlDistribution(sellPnLs)

	return m
}

func sellTradePnLs(trades []types.Trade) []float64 {
	var pnls []float64
	for _, t := range trades {
		if t.Side == types.Sell {
			pnls = append(pnls, t.PnL)
		}
	}
	return pnls
}

// sharpe computes the annualized, zero-risk-free Sharpe ratio from
// per-sample equity returns. The annualization factor derives from the
// actual elapsed wall-clock time spanned by the equity series, not an
// assumed sampling cadence (spec.md §4.11).
func sharpe(equity []backtest.EquityPoint) float64 {
	if len(equity) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	mu := mean(returns)
	sigma := stddev(returns, mu)
	if sigma == 0 {
		return 0
	}

	elapsed := equity[len(equity)-1].Timestamp.Sub(equity[0].Timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}
	secondsPerYear := 365.25 * 24 * 3600
	samplesPerYear := float64(len(returns)) * secondsPerYear / elapsed

	return mu / sigma * math.Sqrt(samplesPerYear)
}

// maxDrawdownPct walks the equity series tracking the running peak,
// returning the largest (peak-equity)/peak observed, as a percentage
// clamped into [0, 100] (spec.md §8 invariant 7).
func maxDrawdownPct(equity []backtest.EquityPoint) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0].Equity
	maxDD := 0.0
	for _, pt := range equity {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - pt.Equity) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}

	pct := maxDD * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func winRate(sellPnLs []float64) float64 {
	if len(sellPnLs) == 0 {
		return 0
	}
	wins := 0
	for _, pnl := range sellPnLs {
		if pnl > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(sellPnLs))
}

func profitFactor(sellPnLs []float64) float64 {
	var gains, losses float64
	for _, pnl := range sellPnLs {
		if pnl > 0 {
			gains += pnl
		} else {
			losses += -pnl
		}
	}
	if losses == 0 {
		if gains > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return gains / losses
}

func pnlDistribution(sellPnLs []float64) (avg, maxWin, maxLoss float64) {
	if len(sellPnLs) == 0 {
		return 0, 0, 0
	}
	sum := 0.0
	for _, pnl := range sellPnLs {
		sum += pnl
		if pnl > maxWin {
			maxWin = pnl
		}
		if pnl < maxLoss {
			maxLoss = pnl
		}
	}
	return sum / float64(len(sellPnLs)), maxWin, maxLoss
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, mu float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
