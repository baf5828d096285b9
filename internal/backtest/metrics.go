package backtest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsCompletedTotal counts finished backtest runs by execution mode.
	RunsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binarybot_backtest_runs_completed_total",
			Help: "Total number of completed backtest runs, by execution mode.",
		},
		[]string{"execution_mode"},
	)

	// RunDurationSeconds tracks wall-clock time to replay one run.
	RunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "binarybot_backtest_run_duration_seconds",
		Help:    "Wall-clock duration of one backtest run.",
		Buckets: prometheus.DefBuckets,
	})

	// SnapshotsDiscardedTotal counts snapshots dropped for missing sides.
	SnapshotsDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_backtest_snapshots_discarded_total",
		Help: "Total number of order-book snapshots discarded for a missing or non-positive side.",
	})

	// SnapshotsCorrectedTotal counts inverted bid/ask legs swapped.
	SnapshotsCorrectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_backtest_snapshots_corrected_total",
		Help: "Total number of inverted bid/ask legs swapped during snapshot validation.",
	})

	// MatcherFillRate tracks the limit-order fill rate per run.
	MatcherFillRate = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "binarybot_backtest_matcher_fill_rate",
		Help:    "Fraction of limit orders filled by end of run, per run.",
		Buckets: []float64{0, 0.25, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
	})
)
