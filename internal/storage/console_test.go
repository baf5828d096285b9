package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/binarybot/pkg/types"
)

func TestConsoleRepository_SeedAndGetSessionsForDate(t *testing.T) {
	repo := NewConsoleRepository(zaptest.NewLogger(t))
	day := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	repo.Seed([]types.RecordingSession{
		{ID: "sess-in", MarketID: "mkt-1", StartTime: day.Add(time.Hour)},
		{ID: "sess-out", MarketID: "mkt-2", StartTime: day.Add(-time.Hour)},
	}, nil, nil)

	sessions, err := repo.GetSessionsForDate(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-in", sessions[0].ID)
}

func TestConsoleRepository_GetTicksBySession_OrdersByTimestamp(t *testing.T) {
	repo := NewConsoleRepository(zaptest.NewLogger(t))
	base := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	repo.Seed(nil, []types.Tick{
		{SessionID: "sess-1", Timestamp: base.Add(2 * time.Second), Price: 0.6},
		{SessionID: "sess-1", Timestamp: base, Price: 0.5},
	}, nil)

	ticks, err := repo.GetTicksBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, 0.5, ticks[0].Price)
	assert.Equal(t, 0.6, ticks[1].Price)
}

func TestConsoleRepository_GetSnapshotsForSessions_ResolvesByMarket(t *testing.T) {
	repo := NewConsoleRepository(zaptest.NewLogger(t))
	base := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	repo.Seed(
		[]types.RecordingSession{{ID: "sess-1", MarketID: "mkt-1", StartTime: base}},
		nil,
		[]types.OrderBookSnapshot{{MarketID: "mkt-1", Timestamp: base}, {MarketID: "mkt-2", Timestamp: base}},
	)

	snapshots, err := repo.GetSnapshotsForSessions(context.Background(), []string{"sess-1"})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "mkt-1", snapshots[0].MarketID)
}

func TestConsoleRepository_UpsertPositionThenAppendTrade(t *testing.T) {
	repo := NewConsoleRepository(zaptest.NewLogger(t))

	err := repo.UpsertPosition(context.Background(), types.Position{BotID: "bot-1", MarketID: "mkt-1", Outcome: types.Yes, Size: 10})
	require.NoError(t, err)

	err = repo.AppendTrade(context.Background(), types.Trade{ID: "t1", BotID: "bot-1", MarketID: "mkt-1", Outcome: types.Yes, FillPrice: 0.5, Quantity: 10})
	require.NoError(t, err)

	assert.Len(t, repo.trades, 1)
	assert.Equal(t, 10.0, repo.positions[positionKey("bot-1", "mkt-1", types.Yes)].Size)

	positions, err := repo.GetPositionsForBot(context.Background(), "bot-1")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, types.Yes, positions[0].Outcome)
}

func TestConsoleRepository_AppendStrategyMetric_NeverErrors(t *testing.T) {
	repo := NewConsoleRepository(zaptest.NewLogger(t))
	assert.NotPanics(t, func() {
		repo.AppendStrategyMetric(context.Background(), types.StrategyMetricSample{BotID: "bot-1"})
	})
}

func TestConsoleRepository_Close(t *testing.T) {
	repo := NewConsoleRepository(zaptest.NewLogger(t))
	assert.NoError(t, repo.Close())
}
