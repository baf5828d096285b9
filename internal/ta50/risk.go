package ta50

import (
	"time"

	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

// RiskVerdict is the Risk Validator's decision: either the action may
// proceed, or it is rejected with a logged reason (spec.md §4.4 — these
// are expected outcomes, not errors).
type RiskVerdict struct {
	Allowed bool
	Reason  string
}

func allow() RiskVerdict { return RiskVerdict{Allowed: true} }

func reject(reason string) RiskVerdict { return RiskVerdict{Allowed: false, Reason: reason} }

// Validate runs the three independent gates in order: throttles, spread,
// min-hold (spec.md §4.4). isExpansion and isRiskReducing describe the
// proposed action; proposedDirection is the direction the action would
// move the book toward.
func Validate(
	p config.StrategyParams,
	now, lastDecisionTime, lastFillTime, lastDirectionChangeTime time.Time,
	spreadC float64,
	isExpansion bool,
	currentDirection, proposedDirection types.Direction,
	isRiskReducing bool,
) RiskVerdict {
	if !lastDecisionTime.IsZero() && now.Sub(lastDecisionTime).Seconds() < p.RebalanceInterval {
		return reject("throttled_rebalance_interval")
	}
	if !lastFillTime.IsZero() && now.Sub(lastFillTime).Seconds() < p.Cooldown {
		return reject("throttled_cooldown")
	}

	if spreadC > p.SpreadHalt {
		return reject("gated_by_spread_halt")
	}
	if isExpansion && spreadC > p.SpreadMaxEntry {
		return reject("gated_by_spread_max_entry")
	}

	if currentDirection == types.Flat || currentDirection == proposedDirection || isRiskReducing {
		return allow()
	}
	if !lastDirectionChangeTime.IsZero() && now.Sub(lastDirectionChangeTime).Seconds() < p.MinHold {
		return reject("gated_by_min_hold")
	}

	return allow()
}
