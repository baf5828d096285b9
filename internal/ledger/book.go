// Package ledger tracks one bot's cash and per-outcome positions, shared
// by the live bot runtime and the backtest engine (spec.md §4.8 "Position
// accounting"). Grounded on 0xtitan6-polymarket-mm's inventory.go
// OnFill/applyYesFill/applyNoFill shape, adapted to a cash-aware book
// instead of a pure inventory tracker.
package ledger

import (
	"github.com/mselser95/binarybot/pkg/types"
)

// Book is one bot's position and cash state.
type Book struct {
	BotID    string
	Cash     float64
	Yes      types.Position
	No       types.Position
	MaxGross float64 // Q_max: position cap shared across both legs
}

// NewBook creates a book seeded with initial capital.
func NewBook(botID string, initialCapital, maxGross float64) *Book {
	return &Book{
		BotID:    botID,
		Cash:     initialCapital,
		Yes:      types.Position{BotID: botID, Outcome: types.Yes},
		No:       types.Position{BotID: botID, Outcome: types.No},
		MaxGross: maxGross,
	}
}

// position returns the mutable position for outcome.
func (b *Book) position(outcome types.Outcome) *types.Position {
	if outcome == types.Yes {
		return &b.Yes
	}
	return &b.No
}

// Buy applies a fill on the buy side: decrements cash, increments
// shares, recomputes avg entry as size-weighted (spec.md §4.8). The
// requested quantity is clamped to what remaining cash and the position
// cap allow; the clamped quantity is returned along with whether
// clamping occurred.
func (b *Book) Buy(outcome types.Outcome, price, qty float64) (filledQty float64, clamped bool) {
	pos := b.position(outcome)

	affordable := qty
	if price > 0 {
		maxAffordable := b.Cash / price
		if maxAffordable < affordable {
			affordable = maxAffordable
		}
	}

	capped := ClampToPositionLimit(pos.Size, affordable, b.MaxGross)
	clamped = capped < qty

	if capped <= 0 {
		return 0, true
	}

	pos.ApplyBuy(price, capped)
	b.Cash -= price * capped
	return capped, clamped
}

// Sell applies a fill on the sell side: increments cash, decrements
// shares, realizes pnl = (fill_price - avg_entry) * qty (spec.md §4.8).
// The requested quantity is clamped to the held size.
func (b *Book) Sell(outcome types.Outcome, price, qty float64) (filledQty, realizedPnL float64, clamped bool) {
	pos := b.position(outcome)

	capped := qty
	if capped > pos.Size {
		capped = pos.Size
	}
	clamped = capped < qty

	if capped <= 0 {
		return 0, 0, true
	}

	realized := pos.ApplySell(price, capped)
	b.Cash += price * capped
	return capped, realized, clamped
}

// MarkToMarket returns cash plus both legs' value at the given per-leg
// conservative (bid) marks, used for backtest drawdown accounting
// (spec.md §4.8).
func (b *Book) MarkToMarket(yesBid, noBid float64) float64 {
	return b.Cash + b.Yes.MarketValue(yesBid) + b.No.MarketValue(noBid)
}
