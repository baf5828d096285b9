package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TrackedBots is the number of bots currently holding strategy state.
var TrackedBots = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "binarybot_state_tracked_bots",
	Help: "Number of bot strategy-state entries currently held in the store.",
})
