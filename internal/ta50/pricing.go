package ta50

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/mselser95/binarybot/pkg/types"
)

// PriceDecision is the Signal Factory's output: the maker-style price to
// submit the decided action at, plus an advisory confidence score
// (spec.md §4.6).
type PriceDecision struct {
	Price      float64
	Confidence float64
}

// Price selects a maker-style price for the given action: BUY joins the
// best bid, SELL joins the best ask, then rounds to the outcome's tick
// size (spec.md §4.6).
func Price(action TradeAction, yesBid, yesAsk, noBid, noAsk, tickSize, absE float64) PriceDecision {
	var raw float64
	switch {
	case action.Outcome == types.Yes && action.Side == types.Buy:
		raw = yesBid
	case action.Outcome == types.Yes && action.Side == types.Sell:
		raw = yesAsk
	case action.Outcome == types.No && action.Side == types.Buy:
		raw = noBid
	default: // No, Sell
		raw = noAsk
	}

	return PriceDecision{
		Price:      RoundToTick(raw, tickSize),
		Confidence: confidence(action.IsUnwind, absE),
	}
}

func confidence(isUnwind bool, absE float64) float64 {
	switch {
	case isUnwind:
		return 0.95
	case absE >= 0.25:
		return 0.90
	case absE >= 0.18:
		return 0.80
	default:
		return 0.70
	}
}

// RoundToTick rounds price to the nearest multiple of tick using banker's-
// agnostic round-half-away-from-zero, per spec.md §9: round(price/tick) ·
// tick. Uses shopspring/decimal internally so repeated rounding of prices
// near a half-tick boundary is exact rather than float-epsilon-dependent.
func RoundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	dPrice := decimal.NewFromFloat(price)
	dTick := decimal.NewFromFloat(tick)
	units := dPrice.DivRound(dTick, 12).Round(0)
	result, _ := units.Mul(dTick).Float64()
	return result
}

// TickDecimals returns the number of decimal places needed to print a
// value rounded to tick, per ceil(-log10(tick)) (spec.md §4.6, §9).
func TickDecimals(tick float64) int {
	if tick <= 0 || tick >= 1 {
		return 0
	}
	return int(math.Ceil(-math.Log10(tick)))
}
