package arbitrage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LegBuysTotal counts accepted leg buys by outcome and priority tier.
	LegBuysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binarybot_arbitrage_leg_buys_total",
			Help: "Total number of arbitrage leg buys by outcome and priority tier.",
		},
		[]string{"outcome", "priority"},
	)

	// ProjectedCombinedAvg tracks the projected yes_avg+no_avg at decision
	// time, used to confirm invariant 7 holds in practice.
	ProjectedCombinedAvg = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "binarybot_arbitrage_projected_combined_avg",
		Help:    "Projected combined average (yes_avg + no_avg) at the moment of a leg buy decision.",
		Buckets: []float64{0.80, 0.85, 0.90, 0.93, 0.95, 0.97, 0.98, 0.99, 1.0},
	})

	// CandidatesRejectedTotal tracks rejected buy candidates by reason.
	CandidatesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binarybot_arbitrage_candidates_rejected_total",
			Help: "Total number of arbitrage buy candidates rejected by reason.",
		},
		[]string{"reason"},
	)

	// CloseoutActivationsTotal counts transitions into closeout mode.
	CloseoutActivationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_arbitrage_closeout_activations_total",
		Help: "Total number of times a bot entered closeout mode.",
	})

	// CycleDurationSeconds tracks the per-cycle decision loop latency.
	CycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "binarybot_arbitrage_cycle_duration_seconds",
		Help:    "Duration of one arbitrage engine decision cycle.",
		Buckets: prometheus.DefBuckets,
	})
)
