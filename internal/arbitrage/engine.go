package arbitrage

import (
	"math"
	"time"

	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

// LegBuy is the engine's decision for one cycle: buy one leg, this many
// shares, at this price (spec.md §4.7).
type LegBuy struct {
	Outcome  types.Outcome
	Price    float64
	Quantity float64
	Priority string // "closeout" | "imbalance" | "round_robin_a" | "round_robin_b"
	Passive  bool
}

// Inputs bundles everything one decision cycle needs: both legs' order
// books and effective (filled+pending) positions, and timing.
type Inputs struct {
	YesBid, YesAsk float64
	NoBid, NoAsk   float64
	Yes, No        EffectivePosition
	Now            time.Time
	BotStart       time.Time
	MarketEnd      time.Time
}

// Decide runs the full per-cycle decision algorithm (spec.md §4.7) and
// returns the chosen leg buy, if any candidate cleared every gate.
func Decide(p config.ArbitrageParams, st *BotState, in Inputs) (LegBuy, bool) {
	t := timeProgress(in.Now, in.BotStart, in.MarketEnd)
	scaledMax := math.Floor(p.MaxPosition * (1 - t))
	closeout := t >= p.CloseoutThreshold
	if closeout && !st.ClosedOutActive {
		CloseoutActivationsTotal.Inc()
		st.ClosedOutActive = true
	}

	yesSize := in.Yes.Size()
	noSize := in.No.Size()
	sizeDiff := math.Abs(yesSize - noSize)

	laggingLeg := types.Yes
	if noSize < yesSize {
		laggingLeg = types.No
	}

	candidates := buildCandidates(p, st, in, closeout, sizeDiff, scaledMax, laggingLeg)

	for _, c := range candidates {
		if !cooldownCleared(p, st, in.Now, c.Outcome, closeout, c.Outcome == laggingLeg) {
			CandidatesRejectedTotal.WithLabelValues("cooldown").Inc()
			continue
		}
		if !canBuy(in, c.Outcome, laggingLeg, c.Quantity, scaledMax) {
			CandidatesRejectedTotal.WithLabelValues("leg_cap").Inc()
			continue
		}
		if !clearsPriceCeiling(p, in, c.Outcome, c.Price) {
			CandidatesRejectedTotal.WithLabelValues("price_ceiling").Inc()
			continue
		}
		if !clearsProfitability(p, in, c.Outcome, c.Price, c.Quantity) {
			CandidatesRejectedTotal.WithLabelValues("profitability").Inc()
			continue
		}

		st.recordBuy(c.Outcome, in.Now, c.Priority)
		LegBuysTotal.WithLabelValues(string(c.Outcome), c.Priority).Inc()
		projected := projectedCombinedAvg(in, c.Outcome, c.Price, c.Quantity)
		ProjectedCombinedAvg.Observe(projected)
		return c, true
	}

	return LegBuy{}, false
}

// timeProgress is t in [0,1] between bot start and market end.
func timeProgress(now, start, end time.Time) float64 {
	total := end.Sub(start).Seconds()
	if total <= 0 {
		return 1
	}
	elapsed := now.Sub(start).Seconds()
	return clampUnit(elapsed / total)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// buildCandidates constructs the priority-ordered candidate list P0..P3
// (spec.md §4.7 step 8). Candidates for legs that cannot structurally
// apply (e.g. no imbalance to close out) are omitted.
func buildCandidates(p config.ArbitrageParams, st *BotState, in Inputs, closeout bool, sizeDiff, scaledMax float64, laggingLeg types.Outcome) []LegBuy {
	var candidates []LegBuy

	if closeout && sizeDiff > 0 {
		qty := math.Min(sizeDiff, 3*p.OrderSize)
		candidates = append(candidates, LegBuy{
			Outcome:  laggingLeg,
			Price:    bestAsk(in, laggingLeg),
			Quantity: qty,
			Priority: "closeout",
			Passive:  false,
		})
	}

	if in.Yes.Size() > 0 || in.No.Size() > 0 {
		imbalance := 0.0
		if scaledMax > 0 {
			imbalance = sizeDiff / scaledMax
		}
		passive := imbalance <= p.ImbalanceThreshold
		candidates = append(candidates, legCandidate(in, laggingLeg, p.OrderSize, passive, "imbalance"))
	}

	roundRobinA := oppositeOf(st.LastBoughtLeg)
	candidates = append(candidates, legCandidate(in, roundRobinA, p.OrderSize, true, "round_robin_a"))

	roundRobinB := st.LastBoughtLeg
	if roundRobinB == "" {
		roundRobinB = types.No
	}
	candidates = append(candidates, legCandidate(in, roundRobinB, p.OrderSize, true, "round_robin_b"))

	return candidates
}

func oppositeOf(leg types.Outcome) types.Outcome {
	if leg == types.Yes {
		return types.No
	}
	return types.Yes
}

func legCandidate(in Inputs, outcome types.Outcome, qty float64, passive bool, priority string) LegBuy {
	price := bestAsk(in, outcome)
	if passive {
		price = passiveBuyPrice(in, outcome)
	}
	return LegBuy{Outcome: outcome, Price: price, Quantity: qty, Priority: priority, Passive: passive}
}

func bestBid(in Inputs, outcome types.Outcome) float64 {
	if outcome == types.Yes {
		return in.YesBid
	}
	return in.NoBid
}

func bestAsk(in Inputs, outcome types.Outcome) float64 {
	if outcome == types.Yes {
		return in.YesAsk
	}
	return in.NoAsk
}

// passiveBuyPrice is round_to_tick(best_bid * (1 - 0.005)), falling back
// to best_bid - tick if that would cross the ask (spec.md §4.7 Pricing).
// The tick used here is a nominal 0.01; callers needing the market's
// actual tick size should round the returned price again through
// ta50.RoundToTick before submission.
func passiveBuyPrice(in Inputs, outcome types.Outcome) float64 {
	const nominalTick = 0.01
	bid := bestBid(in, outcome)
	ask := bestAsk(in, outcome)
	price := math.Round(bid*(1-0.005)/nominalTick) * nominalTick
	if price >= ask {
		price = bid - nominalTick
	}
	return price
}

// cooldownCleared checks the per-leg cooldown, bypassed for the lagging
// leg while in closeout mode (spec.md §4.7 step 5).
func cooldownCleared(p config.ArbitrageParams, st *BotState, now time.Time, outcome types.Outcome, closeout, isLagging bool) bool {
	if closeout && isLagging {
		return true
	}
	cooldown := time.Duration(p.NormalCooldownMS) * time.Millisecond
	if closeout {
		cooldown = time.Duration(p.CloseoutCooldownMS) * time.Millisecond
	}
	last := st.lastBuy(outcome)
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= cooldown
}

// canBuy reports whether buying qty of outcome keeps both the gross
// imbalance and the filled-only imbalance within scaledMax, unless
// outcome is already the lagging leg (spec.md §4.7 step 4).
func canBuy(in Inputs, outcome, laggingLeg types.Outcome, qty, scaledMax float64) bool {
	if outcome == laggingLeg {
		return true
	}

	yesSize, noSize := in.Yes.Size(), in.No.Size()
	yesFilled, noFilled := in.Yes.Filled, in.No.Filled
	if outcome == types.Yes {
		yesSize += qty
		yesFilled += qty
	} else {
		noSize += qty
		noFilled += qty
	}

	return math.Abs(yesSize-noSize) <= scaledMax && math.Abs(yesFilled-noFilled) <= scaledMax
}

// clearsPriceCeiling applies spec.md §4.7 step 6.
func clearsPriceCeiling(p config.ArbitrageParams, in Inputs, outcome types.Outcome, price float64) bool {
	other := oppositeOf(outcome)
	otherPos := in.Yes
	if other == types.No {
		otherPos = in.No
	}

	if otherPos.Size() > 0 {
		return price <= p.ProfitThreshold-otherPos.WeightedAvg()-0.01
	}
	return price <= p.MaxSingleLegPrice
}

// clearsProfitability simulates the post-buy avg on the bought leg and
// requires the projected combined average stays under the profit
// threshold (spec.md §4.7 step 7).
func clearsProfitability(p config.ArbitrageParams, in Inputs, outcome types.Outcome, price, qty float64) bool {
	return projectedCombinedAvg(in, outcome, price, qty) < p.ProfitThreshold
}

func projectedCombinedAvg(in Inputs, outcome types.Outcome, price, qty float64) float64 {
	yes, no := in.Yes, in.No
	if outcome == types.Yes {
		yes = applyBuy(yes, price, qty)
	} else {
		no = applyBuy(no, price, qty)
	}

	yesAvg, noAvg := 0.0, 0.0
	if yes.Size() > 0 {
		yesAvg = yes.WeightedAvg()
	}
	if no.Size() > 0 {
		noAvg = no.WeightedAvg()
	}
	return yesAvg + noAvg
}

func applyBuy(pos EffectivePosition, price, qty float64) EffectivePosition {
	newPending := pos.Pending + qty
	newAvg := pos.PendingAvg
	if newPending > 0 {
		newAvg = (pos.Pending*pos.PendingAvg + qty*price) / newPending
	}
	pos.Pending = newPending
	pos.PendingAvg = newAvg
	return pos
}
