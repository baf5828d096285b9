package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CircuitBreakerEnabled indicates whether the breaker allows trade submission.
	CircuitBreakerEnabled = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "binarybot_cash_breaker_enabled",
		Help: "Whether the cash circuit breaker allows trade submission (1=enabled, 0=disabled)",
	}, []string{"bot_id"})

	// CircuitBreakerCash tracks the last checked bot cash balance.
	CircuitBreakerCash = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "binarybot_cash_breaker_cash",
		Help: "Last checked cash balance for a bot",
	}, []string{"bot_id"})

	// CircuitBreakerDisableThreshold tracks the current threshold for disabling submission.
	CircuitBreakerDisableThreshold = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "binarybot_cash_breaker_disable_threshold",
		Help: "Current cash threshold for disabling trade submission (dynamically calculated)",
	}, []string{"bot_id"})

	// CircuitBreakerEnableThreshold tracks the current threshold for re-enabling submission.
	CircuitBreakerEnableThreshold = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "binarybot_cash_breaker_enable_threshold",
		Help: "Current cash threshold for re-enabling trade submission (with hysteresis)",
	}, []string{"bot_id"})

	// CircuitBreakerAvgTradeSize tracks the rolling average trade size.
	CircuitBreakerAvgTradeSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "binarybot_cash_breaker_avg_trade_size",
		Help: "Rolling average trade cost from recent fills (used for threshold calculation)",
	}, []string{"bot_id"})

	// CircuitBreakerStateChanges counts state transitions.
	CircuitBreakerStateChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binarybot_cash_breaker_state_changes_total",
		Help: "Total number of times the cash circuit breaker changed state",
	}, []string{"bot_id"})
)
