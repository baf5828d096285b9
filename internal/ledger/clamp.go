package ledger

import "math"

// ClampToPositionLimit reduces a requested buy quantity so the resulting
// position never exceeds maxGross (spec.md §4.8 "Positions are capped by
// Q_max and by remaining cash; attempts beyond either are clamped").
// Supplements the distilled spec with the bankroll-clamp idiom from
// other_examples' kalshi-btc15m strategy engine (ClampToBankroll there),
// generalized here to a position-size cap rather than a dollar cap.
func ClampToPositionLimit(currentSize, requestedQty, maxGross float64) float64 {
	if maxGross <= 0 {
		return requestedQty
	}
	headroom := maxGross - currentSize
	if headroom <= 0 {
		return 0
	}
	return math.Min(requestedQty, headroom)
}

// ClampToBankroll reduces a requested buy quantity so its cost never
// exceeds the available cash balance, returning the feasible quantity.
// InsufficientCash (spec.md §7) is handled by clamping, never failing the
// decision loop.
func ClampToBankroll(cash, price, requestedQty float64) float64 {
	if price <= 0 {
		return requestedQty
	}
	maxAffordable := cash / price
	return math.Min(requestedQty, maxAffordable)
}
