package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/binarybot/internal/arbitrage"
	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

func TestReconcile_DryRunBotSkipsEntirely(t *testing.T) {
	logger := zaptest.NewLogger(t)
	repo := storage.NewConsoleRepository(logger)
	b := types.BotInstance{ID: "bot-1", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeDryRun}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())

	require.NoError(t, repo.UpsertPosition(context.Background(), types.Position{BotID: "bot-1", MarketID: "mkt-1", Outcome: types.Yes, Size: 42, AvgEntry: 0.5}))

	err := Reconcile(context.Background(), repo, in, logger)
	require.NoError(t, err)
	assert.Equal(t, 0.0, in.Book.Yes.Size, "dry-run bots must never reconcile a paper position from a prior process")
}

func TestReconcile_LiveBotRestoresPersistedPositions(t *testing.T) {
	logger := zaptest.NewLogger(t)
	repo := storage.NewConsoleRepository(logger)
	b := types.BotInstance{ID: "bot-2", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeLive}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())

	require.NoError(t, repo.UpsertPosition(context.Background(), types.Position{BotID: "bot-2", MarketID: "mkt-1", Outcome: types.Yes, Size: 42, AvgEntry: 0.55}))
	require.NoError(t, repo.UpsertPosition(context.Background(), types.Position{BotID: "bot-2", MarketID: "mkt-1", Outcome: types.No, Size: 7, AvgEntry: 0.2}))

	err := Reconcile(context.Background(), repo, in, logger)
	require.NoError(t, err)

	assert.Equal(t, 42.0, in.Book.Yes.Size)
	assert.Equal(t, 0.55, in.Book.Yes.AvgEntry)
	assert.Equal(t, 7.0, in.Book.No.Size)
}

func TestReconcile_LiveBotWithNoPersistedPositionsLeavesFlatBook(t *testing.T) {
	logger := zaptest.NewLogger(t)
	repo := storage.NewConsoleRepository(logger)
	b := types.BotInstance{ID: "bot-3", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeLive}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())

	err := Reconcile(context.Background(), repo, in, logger)
	require.NoError(t, err)
	assert.Equal(t, 0.0, in.Book.Yes.Size)
	assert.Equal(t, 0.0, in.Book.No.Size)
}

func TestReconcile_SkipsZeroSizePositions(t *testing.T) {
	logger := zaptest.NewLogger(t)
	repo := storage.NewConsoleRepository(logger)
	b := types.BotInstance{ID: "bot-4", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeLive}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())

	require.NoError(t, repo.UpsertPosition(context.Background(), types.Position{BotID: "bot-4", MarketID: "mkt-1", Outcome: types.Yes, Size: 0, AvgEntry: 0}))

	err := Reconcile(context.Background(), repo, in, logger)
	require.NoError(t, err)
	assert.Equal(t, 0.0, in.Book.Yes.Size)
}
