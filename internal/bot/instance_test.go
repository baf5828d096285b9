package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/binarybot/internal/arbitrage"
	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

func TestNewInstance_DefaultsToTA50Strategy(t *testing.T) {
	b := types.BotInstance{ID: "bot-1", MarketID: "mkt-1", StrategySlug: "ta50"}
	st := &state.State{Tau: 0.5}

	in := NewInstance(b, 1000, st, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())

	assert.Equal(t, StrategyTA50, in.Strategy)
	assert.Equal(t, 1000.0, in.Book.Cash)
	assert.Equal(t, types.Flat, in.CurrentDirection)
	require.NotNil(t, in.PendingOrders)
	assert.Len(t, in.PendingOrders, 0)
}

func TestNewInstance_RecognizesArbitrageStrategy(t *testing.T) {
	b := types.BotInstance{ID: "bot-2", MarketID: "mkt-1", StrategySlug: "arbitrage"}
	in := NewInstance(b, 500, &state.State{}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())

	assert.Equal(t, StrategyArbitrage, in.Strategy)
}

func TestNewInstance_UnknownSlugFallsBackToTA50(t *testing.T) {
	b := types.BotInstance{ID: "bot-3", StrategySlug: "something_else"}
	in := NewInstance(b, 100, &state.State{}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())

	assert.Equal(t, StrategyTA50, in.Strategy)
}

func TestInstance_LockUnlockAreSafeToCallDirectly(t *testing.T) {
	in := NewInstance(types.BotInstance{ID: "bot-4"}, 100, &state.State{}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())
	in.Lock()
	in.Unlock()
}
