package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/internal/optimizer"
	"github.com/mselser95/binarybot/pkg/types"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresRepository opens and pings a PostgreSQL connection.
func NewPostgresRepository(cfg *PostgresConfig) (*PostgresRepository, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-repository-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresRepository{db: db, logger: cfg.Logger}, nil
}

// GetSessionsForDate returns every recording session starting on date's
// UTC calendar day.
func (p *PostgresRepository) GetSessionsForDate(ctx context.Context, date time.Time) ([]types.RecordingSession, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, market_id, market_name, start_time, end_time
		FROM recording_sessions
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time
	`, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query sessions for date: %w", err)
	}
	defer rows.Close()

	var sessions []types.RecordingSession
	for rows.Next() {
		var s types.RecordingSession
		if err := rows.Scan(&s.ID, &s.MarketID, &s.MarketName, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetTicksBySession returns a session's ticks ordered by timestamp.
func (p *PostgresRepository) GetTicksBySession(ctx context.Context, sessionID string) ([]types.Tick, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT session_id, timestamp, outcome, price, size
		FROM ticks
		WHERE session_id = $1
		ORDER BY timestamp
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	var ticks []types.Tick
	for rows.Next() {
		var t types.Tick
		var outcome string
		if err := rows.Scan(&t.SessionID, &t.Timestamp, &outcome, &t.Price, &t.Size); err != nil {
			return nil, fmt.Errorf("scan tick row: %w", err)
		}
		t.Outcome = types.Outcome(outcome)
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}

// GetSnapshotsForSessions returns every snapshot belonging to any of the
// given sessions, ordered by timestamp.
func (p *PostgresRepository) GetSnapshotsForSessions(ctx context.Context, sessionIDs []string) ([]types.OrderBookSnapshot, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT market_id, timestamp, bid_yes, ask_yes, bid_no, ask_no
		FROM orderbook_snapshots
		WHERE session_id = ANY($1)
		ORDER BY timestamp
	`, stringArray(sessionIDs))
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.OrderBookSnapshot
	for rows.Next() {
		var s types.OrderBookSnapshot
		if err := rows.Scan(&s.MarketID, &s.Timestamp, &s.BidYes, &s.AskYes, &s.BidNo, &s.AskNo); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// SaveBacktestRun persists a completed backtest run's configuration and
// summary result.
func (p *PostgresRepository) SaveBacktestRun(ctx context.Context, run BacktestRunRecord) error {
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO backtest_runs (
			id, session_ids, strategy_slug, params, initial_capital,
			execution_mode, trade_count, total_pnl, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		run.ID, stringArray(run.SessionIDs), run.StrategySlug, paramsJSON,
		run.InitialCapital, string(run.ExecutionMode), len(run.Result.Trades),
		totalPnL(run.Result), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert backtest run: %w", err)
	}

	p.logger.Debug("backtest-run-saved", zap.String("run-id", run.ID))
	return nil
}

// SaveOptimizationRun persists the run header and every phase's summary.
func (p *PostgresRepository) SaveOptimizationRun(ctx context.Context, run OptimizationRunRecord, phaseResults []optimizer.PhaseResult) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	bestJSON, err := json.Marshal(run.BestParams)
	if err != nil {
		return fmt.Errorf("marshal best params: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO optimization_runs (
			id, session_ids, strategy_slug, best_params, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`, run.ID, stringArray(run.SessionIDs), run.StrategySlug, bestJSON, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert optimization run: %w", err)
	}

	for _, pr := range phaseResults {
		paramsJSON, err := json.Marshal(pr.Best.Params)
		if err != nil {
			return fmt.Errorf("marshal phase best params: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO optimization_phase_results (
				run_id, phase_number, phase_name, skipped, evaluated_count,
				best_score, best_params
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, run.ID, pr.Phase.Number, pr.Phase.Name, pr.Skipped, pr.EvaluatedCount, pr.Best.Score, paramsJSON)
		if err != nil {
			return fmt.Errorf("insert phase result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit optimization run: %w", err)
	}

	p.logger.Debug("optimization-run-saved", zap.String("run-id", run.ID), zap.Int("phases", len(phaseResults)))
	return nil
}

// AppendStrategyMetric is a best-effort write: failures are logged, not
// returned, so a telemetry hiccup never interrupts the trade path.
func (p *PostgresRepository) AppendStrategyMetric(ctx context.Context, sample types.StrategyMetricSample) {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO strategy_metrics (
			bot_id, timestamp, tau, a, e, q_star, theta, dbar,
			consensus_price, yes_size, no_size, total_pnl
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		sample.BotID, sample.Timestamp, sample.Tau, sample.A, sample.E, sample.QStar,
		sample.Theta, sample.Dbar, sample.ConsensusPrice, sample.YesSize, sample.NoSize, sample.TotalPnL,
	)
	if err != nil {
		p.logger.Warn("strategy-metric-append-failed", zap.String("bot-id", sample.BotID), zap.Error(err))
	}
}

// UpsertPosition writes or updates a bot's position in one outcome leg.
func (p *PostgresRepository) UpsertPosition(ctx context.Context, pos types.Position) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO positions (bot_id, market_id, outcome, size, avg_entry, realized_pnl)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bot_id, market_id, outcome)
		DO UPDATE SET size = $4, avg_entry = $5, realized_pnl = $6
	`, pos.BotID, pos.MarketID, string(pos.Outcome), pos.Size, pos.AvgEntry, pos.RealizedPnL)
	if err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}
	return nil
}

// GetPositionsForBot returns a bot's currently persisted positions
// (both legs, if held), used to reconcile internal/ledger.Book state on
// process restart.
func (p *PostgresRepository) GetPositionsForBot(ctx context.Context, botID string) ([]types.Position, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT bot_id, market_id, outcome, size, avg_entry, realized_pnl
		FROM positions
		WHERE bot_id = $1
	`, botID)
	if err != nil {
		return nil, fmt.Errorf("query positions for bot: %w", err)
	}
	defer rows.Close()

	var positions []types.Position
	for rows.Next() {
		var pos types.Position
		var outcome string
		if err := rows.Scan(&pos.BotID, &pos.MarketID, &outcome, &pos.Size, &pos.AvgEntry, &pos.RealizedPnL); err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		pos.Outcome = types.Outcome(outcome)
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

// AppendTrade records one executed fill.
func (p *PostgresRepository) AppendTrade(ctx context.Context, trade types.Trade) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO trades (
			id, bot_id, market_id, timestamp, side, outcome, fill_price, quantity, pnl, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		trade.ID, trade.BotID, trade.MarketID, trade.Timestamp, string(trade.Side),
		string(trade.Outcome), trade.FillPrice, trade.Quantity, trade.PnL, trade.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (p *PostgresRepository) Close() error {
	p.logger.Info("closing-postgres-repository")
	return p.db.Close()
}

func totalPnL(result backtest.RunResult) float64 {
	if len(result.Equity) == 0 {
		return 0
	}
	return result.Equity[len(result.Equity)-1].Equity - result.Equity[0].Equity
}

// stringArray adapts a []string to lib/pq's array literal syntax without
// pulling in the separate pq.Array helper type at every call site.
func stringArray(ss []string) string {
	out := "{"
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%q", s)
	}
	return out + "}"
}
