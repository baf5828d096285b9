package ta50

import (
	"math"
	"time"

	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/pkg/config"
)

// SignalResult is the per-decision output of the Time-Above-0.5 edge-score
// calculator (spec.md §4.2).
type SignalResult struct {
	Tau        float64
	Dbar       float64
	A          float64
	D          float64
	Cross      float64
	Sigma      float64
	Chi        float64
	Theta      float64
	E          float64
	InDeadband bool
}

// ln2 is used throughout the half-life decay formulas.
const ln2 = math.Ln2

// Signal advances the bot's tau/dbar/price-history state from one
// consensus-price observation and returns the composite edge score
// (spec.md §4.2). st is mutated in place; the caller owns st's lifetime
// via internal/state.Store.
func Signal(st *state.State, p config.StrategyParams, price, spreadC, timeToResolutionMinutes float64, wallTime time.Time) SignalResult {
	dt := 1.0
	if last, ok := st.LastPriceTime(); ok {
		delta := wallTime.Sub(last).Seconds()
		if delta < 0.001 {
			delta = 0.001
		}
		dt = delta
	}

	d := price - 0.5
	indicator := 0.0
	if price > 0.5 {
		indicator = 1.0
	}

	decayTau := math.Exp(-ln2 / p.HTau * dt)
	st.Tau = st.Tau*decayTau + indicator*(1-decayTau)

	a := 2*st.Tau - 1

	decayD := math.Exp(-ln2 / p.HD * dt)
	st.Dbar = st.Dbar*decayD + d*(1-decayD)

	st.AppendPrice(wallTime, price)

	cross, sigma := chopStatistics(st.PriceHistory, p.WChopSec)

	theta := 0.0
	if timeToResolutionMinutes > 0 {
		theta = math.Pow(timeToResolutionMinutes/(timeToResolutionMinutes+p.T0), p.ThetaB)
	}

	chi := 1 / (1 + math.Pow(cross/p.C0, 2) + math.Pow(sigma/p.Sigma0, 2))

	delta := math.Max(p.DeltaMin, p.Delta0+p.LambdaS*spreadC+p.LambdaC*cross)

	result := SignalResult{
		Tau:   st.Tau,
		Dbar:  st.Dbar,
		A:     a,
		D:     d,
		Cross: cross,
		Sigma: sigma,
		Chi:   chi,
		Theta: theta,
	}

	if math.Abs(d) < delta && math.Abs(a) < p.AMin {
		result.InDeadband = true
		result.E = 0
		return result
	}

	e := theta * chi * (p.Alpha*a + p.Beta*math.Tanh(st.Dbar/p.D0) + p.Gamma*math.Tanh(d/p.D1))
	result.E = e
	return result
}

// chopStatistics computes the sign-flip rate and logit-return volatility
// over the trailing windowSec seconds of history (spec.md §4.2 step 7).
func chopStatistics(history []state.PricePoint, windowSec float64) (cross, sigma float64) {
	if len(history) < 2 {
		return 0, 0
	}

	cutoff := history[len(history)-1].Timestamp.Add(-time.Duration(windowSec * float64(time.Second)))
	start := 0
	for i, pt := range history {
		if pt.Timestamp.After(cutoff) || pt.Timestamp.Equal(cutoff) {
			start = i
			break
		}
		start = i + 1
	}
	window := history[start:]
	if len(window) < 2 {
		return 0, 0
	}

	flips := 0
	prevSign := sign(window[0].Price - 0.5)
	returns := make([]float64, 0, len(window)-1)
	prevLogit := logit(window[0].Price)
	for i := 1; i < len(window); i++ {
		s := sign(window[i].Price - 0.5)
		if s != 0 && prevSign != 0 && s != prevSign {
			flips++
		}
		if s != 0 {
			prevSign = s
		}

		l := logit(window[i].Price)
		returns = append(returns, l-prevLogit)
		prevLogit = l
	}

	windowMinutes := windowSec / 60.0
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	cross = float64(flips) / windowMinutes
	sigma = stddev(returns)
	return cross, sigma
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// logit computes ln(p/(1-p)) with p clipped to [0.01, 0.99] (spec.md §4.2).
func logit(p float64) float64 {
	p = clamp(p, 0.01, 0.99)
	return math.Log(p / (1 - p))
}

func stddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(n)

	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(n - 1)
	return math.Sqrt(variance)
}
