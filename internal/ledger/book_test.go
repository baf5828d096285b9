package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mselser95/binarybot/pkg/types"
)

func TestBook_BuyRecomputesAvgEntry(t *testing.T) {
	b := NewBook("bot-1", 1000, 600)

	filled, clamped := b.Buy(types.Yes, 0.40, 10)
	assert.Equal(t, 10.0, filled)
	assert.False(t, clamped)
	assert.InDelta(t, 0.40, b.Yes.AvgEntry, 1e-9)
	assert.InDelta(t, 996.0, b.Cash, 1e-9)

	_, _ = b.Buy(types.Yes, 0.50, 10)
	assert.InDelta(t, 0.45, b.Yes.AvgEntry, 1e-9)
}

func TestBook_BuyClampsOnInsufficientCash(t *testing.T) {
	b := NewBook("bot-1", 4, 600)
	filled, clamped := b.Buy(types.Yes, 0.40, 100)
	assert.True(t, clamped)
	assert.InDelta(t, 10.0, filled, 1e-9)
	assert.InDelta(t, 0.0, b.Cash, 1e-9)
}

func TestBook_BuyClampsOnPositionLimit(t *testing.T) {
	b := NewBook("bot-1", 10000, 50)
	filled, clamped := b.Buy(types.Yes, 0.40, 100)
	assert.True(t, clamped)
	assert.InDelta(t, 50.0, filled, 1e-9)
}

func TestBook_SellRealizesPnL(t *testing.T) {
	b := NewBook("bot-1", 1000, 600)
	_, _ = b.Buy(types.Yes, 0.40, 10)

	filled, pnl, clamped := b.Sell(types.Yes, 0.50, 10)
	assert.Equal(t, 10.0, filled)
	assert.False(t, clamped)
	assert.InDelta(t, 1.0, pnl, 1e-9)
	assert.InDelta(t, 0.0, b.Yes.Size, 1e-9)
}

func TestBook_SellClampsToHeldSize(t *testing.T) {
	b := NewBook("bot-1", 1000, 600)
	_, _ = b.Buy(types.Yes, 0.40, 5)

	filled, _, clamped := b.Sell(types.Yes, 0.50, 10)
	assert.True(t, clamped)
	assert.InDelta(t, 5.0, filled, 1e-9)
}

func TestBook_MarkToMarket(t *testing.T) {
	b := NewBook("bot-1", 900, 600)
	_, _ = b.Buy(types.Yes, 0.40, 10)
	mtm := b.MarkToMarket(0.45, 0.50)
	assert.InDelta(t, 900-4+4.5, mtm, 1e-9)
}

func TestClampToBankroll(t *testing.T) {
	assert.InDelta(t, 10.0, ClampToBankroll(4, 0.40, 100), 1e-9)
	assert.InDelta(t, 100.0, ClampToBankroll(1000, 0.40, 100), 1e-9)
}

func TestClampToPositionLimit(t *testing.T) {
	assert.InDelta(t, 20.0, ClampToPositionLimit(30, 100, 50), 1e-9)
	assert.InDelta(t, 0.0, ClampToPositionLimit(60, 100, 50), 1e-9)
}
