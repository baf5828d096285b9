package types

import "time"

// BotMode is the execution mode of a bot instance.
type BotMode string

const (
	ModeLive   BotMode = "live"
	ModeDryRun BotMode = "dry_run"
)

// BotLifecycle is the state of a bot instance.
type BotLifecycle string

const (
	BotIdle     BotLifecycle = "idle"
	BotRunning  BotLifecycle = "running"
	BotPaused   BotLifecycle = "paused"
	BotStopping BotLifecycle = "stopping"
	BotStopped  BotLifecycle = "stopped"
	BotError    BotLifecycle = "error"
)

// Direction is a bot's current net exposure direction.
type Direction string

const (
	LongYes Direction = "LONG_YES"
	LongNo  Direction = "LONG_NO"
	Flat    Direction = "FLAT"
)

// BotInstance is one configured trading bot attached to one market.
type BotInstance struct {
	ID              string
	MarketID        string
	StrategySlug    string
	Mode            BotMode
	StrategyConfig  map[string]string
	State           BotLifecycle
	CreatedAt       time.Time
	StartedAt       time.Time
}

// StrategyMetricSample is an optional per-decision telemetry sample.
type StrategyMetricSample struct {
	Timestamp      time.Time
	BotID          string
	Tau            float64
	A              float64
	E              float64
	QStar          float64
	Theta          float64
	Dbar           float64
	ConsensusPrice float64
	YesSize        float64
	NoSize         float64
	TotalPnL       float64
}
