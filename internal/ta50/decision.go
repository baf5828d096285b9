package ta50

import (
	"math"

	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

// TradeAction is the Decision Engine's output: at most one action per
// call (spec.md §4.5).
type TradeAction struct {
	Side            types.Side
	Outcome         types.Outcome
	Quantity        float64
	IsUnwind        bool
	TargetDirection types.Direction
	Reason          string
}

// Decide applies the unwind-first rule: liquidating the opposing leg
// always strictly precedes building the new one. A single call never
// emits both; the build follows on the next invocation once the unwind
// has filled (spec.md §4.5).
func Decide(p config.StrategyParams, exp ExposureResult, invYes, invNo float64) (TradeAction, bool) {
	if !exp.ShouldAct {
		return TradeAction{}, false
	}

	targetDirection := types.Flat
	switch {
	case exp.QStar > p.QStep:
		targetDirection = types.LongYes
	case exp.QStar < -p.QStep:
		targetDirection = types.LongNo
	}

	switch {
	case exp.Dq > 0:
		if invNo > 0 {
			qty := math.Min(invNo, math.Abs(exp.Dq))
			return TradeAction{
				Side:            types.Sell,
				Outcome:         types.No,
				Quantity:        qty,
				IsUnwind:        true,
				TargetDirection: targetDirection,
				Reason:          "unwind_no_before_build_yes",
			}, true
		}
		qty := math.Min(p.QStep, math.Abs(exp.Dq))
		return TradeAction{
			Side:            types.Buy,
			Outcome:         types.Yes,
			Quantity:        qty,
			IsUnwind:        false,
			TargetDirection: targetDirection,
			Reason:          "build_yes",
		}, true

	case exp.Dq < 0:
		if invYes > 0 {
			qty := math.Min(invYes, math.Abs(exp.Dq))
			return TradeAction{
				Side:            types.Sell,
				Outcome:         types.Yes,
				Quantity:        qty,
				IsUnwind:        true,
				TargetDirection: targetDirection,
				Reason:          "unwind_yes_before_build_no",
			}, true
		}
		qty := math.Min(p.QStep, math.Abs(exp.Dq))
		return TradeAction{
			Side:            types.Buy,
			Outcome:         types.No,
			Quantity:        qty,
			IsUnwind:        false,
			TargetDirection: targetDirection,
			Reason:          "build_no",
		}, true
	}

	return TradeAction{}, false
}

// IsRiskReducing reports whether a is a pure unwind, i.e. the kind of
// action the min-hold gate must always let through (spec.md §4.4).
func (a TradeAction) IsRiskReducing() bool {
	return a.IsUnwind
}
