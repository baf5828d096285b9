package ta50

import (
	"math"

	"github.com/mselser95/binarybot/pkg/config"
)

// ExposureResult is the Exposure Manager's output (spec.md §4.3).
type ExposureResult struct {
	QStar       float64
	QCurrent    float64
	Dq          float64
	ShouldAct   bool
	IsExpanding bool
	EEff        float64
}

// Exposure computes the target net exposure (YES shares minus NO shares)
// from the consensus price, the edge score E, the bot's current
// inventory, and time-to-resolution (spec.md §4.3).
func Exposure(p config.StrategyParams, consensusPrice, e, invYes, invNo, timeToResolutionMinutes float64) ExposureResult {
	qCurrent := invYes - invNo

	absE := math.Abs(e)
	eEff := e
	switch {
	case absE < p.EExit:
		eEff = 0
	case timeToResolutionMinutes < p.TFlat && absE < p.EOverride:
		eEff = 0
	}

	qStarRaw := p.QMax * gammaWeight(consensusPrice) * math.Tanh(p.K*eEff)

	// Gray zone: between exit and enter thresholds, an expansion holds at
	// the current level instead of growing (spec.md §4.3).
	qStar := qStarRaw
	if absE >= p.EExit && absE < p.EEnter && math.Abs(qStarRaw) > math.Abs(qCurrent) {
		qStar = qCurrent
	}

	dq := qStar - qCurrent

	return ExposureResult{
		QStar:       qStar,
		QCurrent:    qCurrent,
		Dq:          dq,
		ShouldAct:   math.Abs(dq) >= p.QStep,
		IsExpanding: math.Abs(qStar) > math.Abs(qCurrent),
		EEff:        eEff,
	}
}

// gammaWeight is g(p) = 4p(1-p): peaks at 1 at p=0.5, zero at the
// endpoints (spec.md §4.3).
func gammaWeight(p float64) float64 {
	return 4 * p * (1 - p)
}
