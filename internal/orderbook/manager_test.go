package orderbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/binarybot/pkg/types"
)

func TestManager_AssemblesTwoLegSnapshotFromBookMessages(t *testing.T) {
	msgChan := make(chan *types.FeedMessage, 10)
	m := New(&Config{Logger: zaptest.NewLogger(t), MessageChannel: msgChan})
	m.RegisterToken("yes-token", "mkt-1", types.Yes)
	m.RegisterToken("no-token", "mkt-1", types.No)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	msgChan <- &types.FeedMessage{
		EventType: "book", TokenID: "yes-token", MarketID: "mkt-1",
		Bids: []types.PriceLevel{{Price: "0.55", Size: "100"}},
		Asks: []types.PriceLevel{{Price: "0.57", Size: "100"}},
	}
	waitForSnapshot(t, m)

	msgChan <- &types.FeedMessage{
		EventType: "book", TokenID: "no-token", MarketID: "mkt-1",
		Bids: []types.PriceLevel{{Price: "0.42", Size: "100"}},
		Asks: []types.PriceLevel{{Price: "0.44", Size: "100"}},
	}
	waitForSnapshot(t, m)

	snap, ok := m.Snapshot("mkt-1")
	require.True(t, ok)
	assert.InDelta(t, 0.55, snap.BidYes, 1e-9)
	assert.InDelta(t, 0.57, snap.AskYes, 1e-9)
	assert.InDelta(t, 0.42, snap.BidNo, 1e-9)
	assert.InDelta(t, 0.44, snap.AskNo, 1e-9)
}

func TestManager_TradeMessageProducesTick(t *testing.T) {
	msgChan := make(chan *types.FeedMessage, 10)
	m := New(&Config{Logger: zaptest.NewLogger(t), MessageChannel: msgChan})
	m.RegisterToken("yes-token", "mkt-1", types.Yes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	msgChan <- &types.FeedMessage{
		EventType: "last_trade_price", TokenID: "yes-token", MarketID: "mkt-1",
		Price: "0.56", Size: "12",
	}

	select {
	case tick := <-m.TickChan():
		assert.Equal(t, types.Yes, tick.Outcome)
		assert.InDelta(t, 0.56, tick.Price, 1e-9)
		assert.InDelta(t, 12, tick.Size, 1e-9)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
	}
}

func TestManager_UnregisteredTokenIsIgnored(t *testing.T) {
	msgChan := make(chan *types.FeedMessage, 10)
	m := New(&Config{Logger: zaptest.NewLogger(t), MessageChannel: msgChan})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	msgChan <- &types.FeedMessage{EventType: "book", TokenID: "unknown", MarketID: "mkt-1"}

	select {
	case <-m.SnapshotChan():
		t.Fatal("unexpected snapshot for unregistered token")
	case <-time.After(100 * time.Millisecond):
	}
}

func waitForSnapshot(t *testing.T, m *Manager) {
	t.Helper()
	select {
	case <-m.SnapshotChan():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}
