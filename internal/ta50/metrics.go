package ta50

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeadbandHoldsTotal counts decisions suppressed by the deadband gate.
	DeadbandHoldsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_ta50_deadband_holds_total",
		Help: "Total number of signal evaluations that landed in the deadband.",
	})

	// EdgeScore tracks the composite edge score E emitted per decision.
	EdgeScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "binarybot_ta50_edge_score",
		Help:    "Composite edge score E emitted per signal evaluation.",
		Buckets: []float64{-1, -0.5, -0.35, -0.18, -0.1, 0, 0.1, 0.18, 0.35, 0.5, 1},
	})

	// RiskRejectionsTotal counts Risk Validator rejections by reason.
	RiskRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binarybot_ta50_risk_rejections_total",
			Help: "Total number of Risk Validator rejections by reason.",
		},
		[]string{"reason"},
	)

	// DecisionsEmittedTotal counts decisions that cleared all gates, by
	// side and outcome.
	DecisionsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binarybot_ta50_decisions_emitted_total",
			Help: "Total number of TradeActions emitted by the decision engine.",
		},
		[]string{"side", "outcome", "is_unwind"},
	)
)
