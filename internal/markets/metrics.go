package markets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TickCacheHitsTotal tracks cache hits for market tick/min-size lookups.
	TickCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_markets_tick_cache_hits_total",
		Help: "Total number of market tick-size cache hits",
	})

	// TickCacheMissesTotal tracks cache misses for market tick/min-size lookups.
	TickCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binarybot_markets_tick_cache_misses_total",
		Help: "Total number of market tick-size cache misses",
	})
)
