package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveBots is the number of bot instances currently registered.
	ActiveBots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "binarybot_runtime_active_bots",
		Help: "Number of bot instances currently registered with the runtime.",
	})

	// StepsTotal counts runtime steps processed, by strategy kind.
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binarybot_runtime_steps_total",
		Help: "Total number of bot runtime steps processed, by strategy.",
	}, []string{"strategy"})

	// DecisionsTotal counts steps where the strategy emitted an action,
	// by strategy kind and outcome.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binarybot_runtime_decisions_total",
		Help: "Total number of actionable strategy decisions, by strategy and outcome leg.",
	}, []string{"strategy", "outcome"})

	// OrdersPlacedTotal counts orders submitted to the gateway or, in
	// dry_run, directly to the position ledger.
	OrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binarybot_runtime_orders_placed_total",
		Help: "Total number of orders placed, by mode.",
	}, []string{"mode"})

	// OrdersCancelledStaleTotal counts orders cancelled by the stale
	// resting-order sweep.
	OrdersCancelledStaleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_runtime_orders_cancelled_stale_total",
		Help: "Total number of resting orders cancelled for being stale (price distance or age).",
	})

	// FillsProcessedTotal counts fill confirmations applied to the ledger.
	FillsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_runtime_fills_processed_total",
		Help: "Total number of fill confirmations applied to a bot's ledger.",
	})

	// CircuitBreakerBlocksTotal counts decisions suppressed by a bot's
	// cash circuit breaker.
	CircuitBreakerBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_runtime_circuit_breaker_blocks_total",
		Help: "Total number of strategy decisions suppressed because the cash circuit breaker was disabled.",
	})

	// SettlementTimeoutsTotal counts bots that gave up waiting for a
	// settlement result.
	SettlementTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_runtime_settlement_timeouts_total",
		Help: "Total number of bots that gave up polling for settlement.",
	})
)
