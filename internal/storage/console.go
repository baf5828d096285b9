package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/optimizer"
	"github.com/mselser95/binarybot/pkg/types"
)

// ConsoleRepository implements Repository with an in-memory backing store,
// pretty-printing every write to the console as it lands. Meant for local
// development against fixture data, not production persistence.
type ConsoleRepository struct {
	logger *zap.Logger

	mu        sync.RWMutex
	sessions  []types.RecordingSession
	ticks     map[string][]types.Tick // by session id
	snapshots map[string][]types.OrderBookSnapshot
	positions map[string]types.Position // by bot_id|market_id|outcome
	trades    []types.Trade
}

// NewConsoleRepository creates a new console-backed repository, optionally
// seeded with fixture sessions/ticks/snapshots for local runs.
func NewConsoleRepository(logger *zap.Logger) *ConsoleRepository {
	logger.Info("console-repository-initialized")
	return &ConsoleRepository{
		logger:    logger,
		ticks:     make(map[string][]types.Tick),
		snapshots: make(map[string][]types.OrderBookSnapshot),
		positions: make(map[string]types.Position),
	}
}

// Seed loads fixture sessions/ticks/snapshots, letting a console-mode run
// replay recorded data without a database.
func (c *ConsoleRepository) Seed(sessions []types.RecordingSession, ticks []types.Tick, snapshots []types.OrderBookSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions = append(c.sessions, sessions...)
	for _, t := range ticks {
		c.ticks[t.SessionID] = append(c.ticks[t.SessionID], t)
	}
	for _, s := range snapshots {
		key := s.MarketID
		c.snapshots[key] = append(c.snapshots[key], s)
	}
}

// GetSessionsForDate returns every seeded session starting on date's UTC day.
func (c *ConsoleRepository) GetSessionsForDate(ctx context.Context, date time.Time) ([]types.RecordingSession, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var out []types.RecordingSession
	for _, s := range c.sessions {
		if !s.StartTime.Before(dayStart) && s.StartTime.Before(dayEnd) {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetTicksBySession returns a session's ticks ordered by timestamp.
func (c *ConsoleRepository) GetTicksBySession(ctx context.Context, sessionID string) ([]types.Tick, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := append([]types.Tick(nil), c.ticks[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// GetSnapshotsForSessions returns snapshots for any market backing the
// given sessions, ordered by timestamp. Snapshots are keyed by market id in
// this in-memory store, so sessions are first resolved to their market.
func (c *ConsoleRepository) GetSnapshotsForSessions(ctx context.Context, sessionIDs []string) ([]types.OrderBookSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	want := make(map[string]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		want[id] = struct{}{}
	}

	marketIDs := make(map[string]struct{})
	for _, s := range c.sessions {
		if _, ok := want[s.ID]; ok {
			marketIDs[s.MarketID] = struct{}{}
		}
	}

	var out []types.OrderBookSnapshot
	for marketID := range marketIDs {
		out = append(out, c.snapshots[marketID]...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// SaveBacktestRun pretty-prints the run's summary to console.
func (c *ConsoleRepository) SaveBacktestRun(ctx context.Context, run BacktestRunRecord) error {
	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("BACKTEST RUN COMPLETE\n")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("ID:        %s\n", run.ID)
	fmt.Printf("Strategy:  %s\n", run.StrategySlug)
	fmt.Printf("Sessions:  %d\n", len(run.SessionIDs))
	fmt.Printf("Mode:      %s\n", run.ExecutionMode)
	fmt.Printf("Trades:    %d\n", len(run.Result.Trades))
	if len(run.Result.Equity) > 0 {
		pnl := run.Result.Equity[len(run.Result.Equity)-1].Equity - run.Result.Equity[0].Equity
		fmt.Printf("Total PnL: %.2f\n", pnl)
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	return nil
}

// SaveOptimizationRun pretty-prints the run's best params and per-phase
// summary to console.
func (c *ConsoleRepository) SaveOptimizationRun(ctx context.Context, run OptimizationRunRecord, phaseResults []optimizer.PhaseResult) error {
	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("OPTIMIZATION RUN COMPLETE\n")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("ID:       %s\n", run.ID)
	fmt.Printf("Strategy: %s\n", run.StrategySlug)
	for _, pr := range phaseResults {
		status := "ok"
		if pr.Skipped {
			status = "skipped"
		}
		fmt.Printf("  Phase %d (%s): %s, evaluated %d, best score %.4f\n",
			pr.Phase.Number, pr.Phase.Name, status, pr.EvaluatedCount, pr.Best.Score)
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	return nil
}

// AppendStrategyMetric logs the sample at debug level; console mode keeps
// no queryable telemetry history.
func (c *ConsoleRepository) AppendStrategyMetric(ctx context.Context, sample types.StrategyMetricSample) {
	c.logger.Debug("strategy-metric",
		zap.String("bot-id", sample.BotID),
		zap.Float64("tau", sample.Tau),
		zap.Float64("consensus-price", sample.ConsensusPrice),
		zap.Float64("total-pnl", sample.TotalPnL))
}

// UpsertPosition writes or updates the in-memory position for a bot/market/outcome.
func (c *ConsoleRepository) UpsertPosition(ctx context.Context, pos types.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.positions[positionKey(pos.BotID, pos.MarketID, pos.Outcome)] = pos
	return nil
}

// GetPositionsForBot returns a bot's currently held in-memory positions.
func (c *ConsoleRepository) GetPositionsForBot(ctx context.Context, botID string) ([]types.Position, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []types.Position
	for _, pos := range c.positions {
		if pos.BotID == botID {
			out = append(out, pos)
		}
	}
	return out, nil
}

// AppendTrade records a fill and prints it.
func (c *ConsoleRepository) AppendTrade(ctx context.Context, trade types.Trade) error {
	c.mu.Lock()
	c.trades = append(c.trades, trade)
	c.mu.Unlock()

	c.logger.Info("trade-recorded",
		zap.String("bot-id", trade.BotID),
		zap.String("side", string(trade.Side)),
		zap.String("outcome", string(trade.Outcome)),
		zap.Float64("fill-price", trade.FillPrice),
		zap.Float64("quantity", trade.Quantity))
	return nil
}

// Close is a no-op for the console repository.
func (c *ConsoleRepository) Close() error {
	c.logger.Info("closing-console-repository")
	return nil
}

func positionKey(botID, marketID string, outcome types.Outcome) string {
	return botID + "|" + marketID + "|" + string(outcome)
}
