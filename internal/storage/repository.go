// Package storage implements the Repository port (spec.md §6
// "Persistence interface") the backtest/optimizer/bot-runtime core reads
// and writes through, so none of them import database/sql or a wire
// format directly. Grounded on the teacher's Storage interface shape
// (one interface, swappable postgres/console implementations selected
// by config.Config.StorageMode) adapted from a single write-only
// opportunity sink into a full read/write repository.
package storage

import (
	"context"
	"time"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/internal/optimizer"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

// BacktestRunRecord is a persisted backtest run (spec.md §6
// "save_backtest_run(run)").
type BacktestRunRecord struct {
	ID             string
	SessionIDs     []string
	StrategySlug   string
	Params         config.StrategyParams
	InitialCapital float64
	ExecutionMode  backtest.ExecutionMode
	Result         backtest.RunResult
	CreatedAt      time.Time
}

// OptimizationRunRecord is a persisted optimization run header (spec.md
// §6 "save_optimization_run(run, phase_results[])").
type OptimizationRunRecord struct {
	ID           string
	SessionIDs   []string
	StrategySlug string
	BaseParams   config.StrategyParams
	BestParams   config.StrategyParams
	CreatedAt    time.Time
}

// Repository is the minimal persistence port the core depends on.
// Implementations must not leak their storage technology into the
// method signatures (spec.md §6).
type Repository interface {
	// GetSessionsForDate returns every recording session whose start
	// time falls on date (UTC day boundary).
	GetSessionsForDate(ctx context.Context, date time.Time) ([]types.RecordingSession, error)

	// GetTicksBySession returns a session's ticks ordered by timestamp.
	GetTicksBySession(ctx context.Context, sessionID string) ([]types.Tick, error)

	// GetSnapshotsForSessions returns every snapshot belonging to any of
	// the given sessions.
	GetSnapshotsForSessions(ctx context.Context, sessionIDs []string) ([]types.OrderBookSnapshot, error)

	SaveBacktestRun(ctx context.Context, run BacktestRunRecord) error
	SaveOptimizationRun(ctx context.Context, run OptimizationRunRecord, phaseResults []optimizer.PhaseResult) error

	// AppendStrategyMetric is best-effort: implementations log and
	// swallow errors rather than propagate them, since losing a
	// telemetry sample must never interrupt the trade path (spec.md §6).
	AppendStrategyMetric(ctx context.Context, sample types.StrategyMetricSample)

	UpsertPosition(ctx context.Context, pos types.Position) error
	AppendTrade(ctx context.Context, trade types.Trade) error

	// GetPositionsForBot returns a bot's currently persisted positions,
	// used to reconcile internal/ledger.Book state on restart (not a
	// spec.md §6 Repository method; supplements it the way
	// kalshi-btc15m's reconcilePositions rebuilds in-memory state from
	// the exchange on startup, see DESIGN.md).
	GetPositionsForBot(ctx context.Context, botID string) ([]types.Position, error)

	Close() error
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*ConsoleRepository)(nil)
)
