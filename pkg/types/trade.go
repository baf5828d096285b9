package types

import "time"

// Trade is a fill record: one executed leg of one order.
type Trade struct {
	ID        string
	BotID     string
	MarketID  string
	Timestamp time.Time
	Side      Side
	Outcome   Outcome
	FillPrice float64
	Quantity  float64
	// PnL is populated for SELL trades only: (fill_price - avg_entry) * qty.
	PnL    float64
	Reason string
}

// Value is price * quantity.
func (t Trade) Value() float64 {
	return t.FillPrice * t.Quantity
}
