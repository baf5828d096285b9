package backtest

import (
	"time"

	"github.com/mselser95/binarybot/pkg/types"
)

// ExecutionMode selects how a decided trade turns into a fill in
// backtest replay (spec.md §9 "limit is canonical, immediate is a
// diagnostic crutch — never blend the two within a run").
type ExecutionMode string

const (
	ModeImmediate ExecutionMode = "immediate"
	ModeLimit     ExecutionMode = "limit"
)

// RunConfig is the backtest run configuration (spec.md §6).
type RunConfig struct {
	SessionIDs              []string
	StrategySlug             string
	InitialCapital           float64
	ExecutionMode            ExecutionMode // default ModeLimit
	FillMarketableImmediately bool
	ValidateTrades           bool
	Verbose                  bool
}

// EquityPoint is one balance/equity sample (spec.md §4.8 "Outputs").
type EquityPoint struct {
	Timestamp time.Time
	Cash      float64
	Equity    float64
}

// SessionBreakdown is the per-session slice of a run's results.
type SessionBreakdown struct {
	SessionID  string
	Trades     int
	PnL        float64
	MatcherStats Stats
}

// RunResult is everything a backtest run produces (spec.md §4.8, §4.11).
type RunResult struct {
	Trades            []types.Trade
	Equity            []EquityPoint
	Sessions          []SessionBreakdown
	SnapshotsDiscarded int
	SnapshotsCorrected int
	MatcherStats      Stats
}
