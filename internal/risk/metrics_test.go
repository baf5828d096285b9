package risk

import "testing"

func TestMetrics_Registration(t *testing.T) {
	if CircuitBreakerEnabled == nil {
		t.Error("CircuitBreakerEnabled not registered")
	}
	if CircuitBreakerCash == nil {
		t.Error("CircuitBreakerCash not registered")
	}
	if CircuitBreakerDisableThreshold == nil {
		t.Error("CircuitBreakerDisableThreshold not registered")
	}
	if CircuitBreakerEnableThreshold == nil {
		t.Error("CircuitBreakerEnableThreshold not registered")
	}
	if CircuitBreakerAvgTradeSize == nil {
		t.Error("CircuitBreakerAvgTradeSize not registered")
	}
	if CircuitBreakerStateChanges == nil {
		t.Error("CircuitBreakerStateChanges not registered")
	}
}

func TestMetrics_GaugeSet(t *testing.T) {
	CircuitBreakerEnabled.WithLabelValues("bot-1").Set(1.0)
	CircuitBreakerCash.WithLabelValues("bot-1").Set(100.0)
	CircuitBreakerDisableThreshold.WithLabelValues("bot-1").Set(30.0)
	CircuitBreakerEnableThreshold.WithLabelValues("bot-1").Set(45.0)
	CircuitBreakerAvgTradeSize.WithLabelValues("bot-1").Set(10.0)
}

func TestMetrics_CounterIncrement(t *testing.T) {
	CircuitBreakerStateChanges.WithLabelValues("bot-1").Inc()
}
