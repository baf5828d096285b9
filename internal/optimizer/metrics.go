package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal counts every backtest run the optimizer executed
	// while scoring candidates.
	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_optimizer_evaluations_total",
		Help: "Total number of backtest evaluations run by the parameter optimizer",
	})

	// PhaseDuration observes how long each phase took to complete.
	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "binarybot_optimizer_phase_duration_seconds",
		Help:    "Duration of a single optimizer phase",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"phase"})

	// PhaseSkippedTotal counts phases skipped via skip_if_negative.
	PhaseSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binarybot_optimizer_phase_skipped_total",
		Help: "Total number of optimizer phases skipped",
	}, []string{"phase"})

	// CombinationCapAbortsTotal counts phases aborted for exceeding the
	// combination-count cap.
	CombinationCapAbortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_optimizer_combination_cap_aborts_total",
		Help: "Total number of optimizer phases aborted for exceeding the combination cap",
	})
)
