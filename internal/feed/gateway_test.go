package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/binarybot/pkg/types"
)

func TestPaperGateway_PlaceLimitFillsImmediately(t *testing.T) {
	g := NewPaperGateway(zaptest.NewLogger(t), 10)

	id, err := g.PlaceLimit(context.Background(), types.Buy, types.Yes, 0.55, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case fill := <-g.Fills():
		assert.Equal(t, id, fill.OrderID)
		assert.InDelta(t, 0.55, fill.Price, 1e-9)
		assert.InDelta(t, 10, fill.Qty, 1e-9)
		assert.True(t, fill.IsFinal)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fill")
	}
}

func TestPaperGateway_CancelRemovesOpenOrder(t *testing.T) {
	g := NewPaperGateway(zaptest.NewLogger(t), 10)
	id, err := g.PlaceLimit(context.Background(), types.Sell, types.No, 0.4, 5)
	require.NoError(t, err)

	err = g.Cancel(context.Background(), id)
	assert.NoError(t, err)

	g.mu.Lock()
	_, stillOpen := g.open[id]
	g.mu.Unlock()
	assert.False(t, stillOpen)
}

func TestPaperGateway_CancelAllClearsOpenOrders(t *testing.T) {
	g := NewPaperGateway(zaptest.NewLogger(t), 10)
	_, _ = g.PlaceLimit(context.Background(), types.Buy, types.Yes, 0.5, 1)
	_, _ = g.PlaceLimit(context.Background(), types.Buy, types.No, 0.5, 1)

	g.CancelAll(context.Background())

	g.mu.Lock()
	n := len(g.open)
	g.mu.Unlock()
	assert.Equal(t, 0, n)
}

func TestStaleSnapshot(t *testing.T) {
	now := time.Now()
	fresh := types.OrderBookSnapshot{Timestamp: now.Add(-1 * time.Second)}
	stale := types.OrderBookSnapshot{Timestamp: now.Add(-10 * time.Second)}
	zero := types.OrderBookSnapshot{}

	assert.False(t, StaleSnapshot(fresh, now, 5*time.Second))
	assert.True(t, StaleSnapshot(stale, now, 5*time.Second))
	assert.True(t, StaleSnapshot(zero, now, 5*time.Second))
}
