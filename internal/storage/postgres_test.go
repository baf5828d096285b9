package storage

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/internal/optimizer"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &PostgresRepository{db: db, logger: zaptest.NewLogger(t)}, mock
}

func TestPostgresRepository_GetSessionsForDate(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "market_id", "market_name", "start_time", "end_time"}).
		AddRow("sess-1", "mkt-1", "Will X happen?", date.Add(time.Hour), date.Add(2*time.Hour))
	mock.ExpectQuery("SELECT id, market_id, market_name, start_time, end_time").
		WithArgs(date, date.Add(24*time.Hour)).
		WillReturnRows(rows)

	sessions, err := repo.GetSessionsForDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetTicksBySession(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"session_id", "timestamp", "outcome", "price", "size"}).
		AddRow("sess-1", now, "YES", 0.55, 10.0).
		AddRow("sess-1", now.Add(time.Second), "NO", 0.45, 5.0)
	mock.ExpectQuery("SELECT session_id, timestamp, outcome, price, size").
		WithArgs("sess-1").
		WillReturnRows(rows)

	ticks, err := repo.GetTicksBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, types.Yes, ticks[0].Outcome)
	assert.Equal(t, types.No, ticks[1].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetSnapshotsForSessions_EmptyInput(t *testing.T) {
	repo, _ := newMockRepo(t)

	snapshots, err := repo.GetSnapshotsForSessions(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, snapshots)
}

func TestPostgresRepository_SaveBacktestRun(t *testing.T) {
	repo, mock := newMockRepo(t)

	run := BacktestRunRecord{
		ID:             "run-1",
		SessionIDs:     []string{"sess-1"},
		StrategySlug:   "ta50",
		Params:         config.DefaultStrategyParams(),
		InitialCapital: 1000,
		ExecutionMode:  backtest.ModeLimit,
		Result: backtest.RunResult{
			Trades: []types.Trade{{ID: "t1"}},
			Equity: []backtest.EquityPoint{
				{Equity: 1000},
				{Equity: 1050},
			},
		},
		CreatedAt: time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO backtest_runs").
		WithArgs(
			run.ID, stringArray(run.SessionIDs), run.StrategySlug, sqlmock.AnyArg(),
			run.InitialCapital, string(run.ExecutionMode), 1, 50.0, run.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveBacktestRun(context.Background(), run)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveOptimizationRun(t *testing.T) {
	repo, mock := newMockRepo(t)

	run := OptimizationRunRecord{
		ID:           "opt-1",
		SessionIDs:   []string{"sess-1"},
		StrategySlug: "ta50",
		BaseParams:   config.DefaultStrategyParams(),
		BestParams:   config.DefaultStrategyParams(),
		CreatedAt:    time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC),
	}
	phases := []optimizer.PhaseResult{
		{
			Phase:          optimizer.Phase{Number: 1, Name: "coarse"},
			EvaluatedCount: 10,
			Best:           optimizer.Candidate{Score: 0.5},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO optimization_runs").
		WithArgs(run.ID, stringArray(run.SessionIDs), run.StrategySlug, sqlmock.AnyArg(), run.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO optimization_phase_results").
		WithArgs("opt-1", 1, "coarse", false, 10, 0.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.SaveOptimizationRun(context.Background(), run, phases)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_AppendStrategyMetric_SwallowsError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO strategy_metrics").
		WillReturnError(assert.AnError)

	assert.NotPanics(t, func() {
		repo.AppendStrategyMetric(context.Background(), types.StrategyMetricSample{BotID: "bot-1"})
	})
}

func TestPostgresRepository_UpsertPosition(t *testing.T) {
	repo, mock := newMockRepo(t)
	pos := types.Position{BotID: "bot-1", MarketID: "mkt-1", Outcome: types.Yes, Size: 10, AvgEntry: 0.5}

	mock.ExpectExec("INSERT INTO positions").
		WithArgs(pos.BotID, pos.MarketID, string(pos.Outcome), pos.Size, pos.AvgEntry, pos.RealizedPnL).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertPosition(context.Background(), pos)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetPositionsForBot(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"bot_id", "market_id", "outcome", "size", "avg_entry", "realized_pnl"}).
		AddRow("bot-1", "mkt-1", "YES", 10.0, 0.5, 0.0)
	mock.ExpectQuery("SELECT bot_id, market_id, outcome, size, avg_entry, realized_pnl").
		WithArgs("bot-1").
		WillReturnRows(rows)

	positions, err := repo.GetPositionsForBot(context.Background(), "bot-1")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, types.Yes, positions[0].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_AppendTrade(t *testing.T) {
	repo, mock := newMockRepo(t)
	trade := types.Trade{ID: "t1", BotID: "bot-1", MarketID: "mkt-1", Timestamp: time.Now(), Side: types.Buy, Outcome: types.Yes, FillPrice: 0.5, Quantity: 10}

	mock.ExpectExec("INSERT INTO trades").
		WithArgs(trade.ID, trade.BotID, trade.MarketID, trade.Timestamp, string(trade.Side),
			string(trade.Outcome), trade.FillPrice, trade.Quantity, trade.PnL, trade.Reason).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.AppendTrade(context.Background(), trade)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
