package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/binarybot/internal/arbitrage"
	"github.com/mselser95/binarybot/internal/feed"
	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

func TestSweepStaleOrders_CancelsOrderFarFromQuote(t *testing.T) {
	b := types.BotInstance{ID: "bot-1", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeLive}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())
	in.PendingOrders["order-1"] = &types.LimitOrder{
		ID: "order-1", Side: types.Buy, Outcome: types.Yes, Price: 0.50, CreatedAt: time.Now(), Status: types.OrderOpen,
	}

	mf := newFakeFeed()
	gw := feed.NewPaperGateway(zaptest.NewLogger(t), 10)
	rt, _ := newTestRuntime(t, in, mf, gw)
	rt.lastSnapshot = types.OrderBookSnapshot{MarketID: "mkt-1", Timestamp: time.Now(), BidYes: 0.90, AskYes: 0.92, BidNo: 0.08, AskNo: 0.10}

	rt.sweepStaleOrders(context.Background())

	assert.Empty(t, in.PendingOrders, "order 0.42 away from the new best bid should have been cancelled")
}

func TestSweepStaleOrders_CancelsOrderPastMaxAge(t *testing.T) {
	b := types.BotInstance{ID: "bot-2", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeLive}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())
	in.PendingOrders["order-1"] = &types.LimitOrder{
		ID: "order-1", Side: types.Buy, Outcome: types.Yes, Price: 0.50, CreatedAt: time.Now().Add(-time.Hour), Status: types.OrderOpen,
	}

	mf := newFakeFeed()
	gw := feed.NewPaperGateway(zaptest.NewLogger(t), 10)
	rt, _ := newTestRuntime(t, in, mf, gw)
	rt.lastSnapshot = types.OrderBookSnapshot{MarketID: "mkt-1", Timestamp: time.Now(), BidYes: 0.50, AskYes: 0.52, BidNo: 0.48, AskNo: 0.50}

	rt.sweepStaleOrders(context.Background())

	assert.Empty(t, in.PendingOrders)
}

func TestSweepStaleOrders_LeavesFreshCloseOrderAlone(t *testing.T) {
	b := types.BotInstance{ID: "bot-3", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeLive}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())
	in.PendingOrders["order-1"] = &types.LimitOrder{
		ID: "order-1", Side: types.Buy, Outcome: types.Yes, Price: 0.50, CreatedAt: time.Now(), Status: types.OrderOpen,
	}

	mf := newFakeFeed()
	gw := feed.NewPaperGateway(zaptest.NewLogger(t), 10)
	rt, _ := newTestRuntime(t, in, mf, gw)
	rt.lastSnapshot = types.OrderBookSnapshot{MarketID: "mkt-1", Timestamp: time.Now(), BidYes: 0.50, AskYes: 0.52, BidNo: 0.48, AskNo: 0.50}

	rt.sweepStaleOrders(context.Background())

	assert.Len(t, in.PendingOrders, 1)
}

func TestSweepStaleOrders_NoOpWithoutSnapshotOrInDryRun(t *testing.T) {
	b := types.BotInstance{ID: "bot-4", MarketID: "mkt-1", StrategySlug: "ta50", Mode: types.ModeDryRun}
	in := NewInstance(b, 1000, &state.State{Tau: 0.5}, &arbitrage.BotState{}, config.DefaultStrategyParams(), config.DefaultArbitrageParams())
	in.PendingOrders["order-1"] = &types.LimitOrder{ID: "order-1", CreatedAt: time.Now(), Status: types.OrderOpen}

	mf := newFakeFeed()
	gw := feed.NewPaperGateway(zaptest.NewLogger(t), 10)
	rt, _ := newTestRuntime(t, in, mf, gw)
	rt.lastSnapshot = types.OrderBookSnapshot{MarketID: "mkt-1", Timestamp: time.Now(), BidYes: 0.5, AskYes: 0.52, BidNo: 0.48, AskNo: 0.5}

	rt.sweepStaleOrders(context.Background())

	assert.Len(t, in.PendingOrders, 1, "dry-run bots never have live resting orders to sweep")
}
