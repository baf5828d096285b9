// Package arbitrage implements the leg-balancing arbitrage engine: it
// opportunistically acquires both legs of a binary market when their
// combined ask is below one, hedging them into a matched pair before
// resolution (spec.md §4.7). Grounded on the teacher's detector.go for
// per-cycle decision-loop shape and promauto metrics-per-rejection
// convention, generalized from N-outcome cross-market scanning to the
// two-leg single-market state machine the spec calls for.
package arbitrage

import (
	"time"

	"github.com/mselser95/binarybot/pkg/types"
)

// BotState is one bot's arbitrage-engine memory: per-leg cooldown
// timestamps and round-robin bookkeeping (spec.md §4.7 "Per-bot state").
type BotState struct {
	LastBuyYes      time.Time
	LastBuyNo       time.Time
	LastBoughtLeg   types.Outcome // for round-robin alternation; zero value means "none yet"
	ClosedOutActive bool
}

// lastBuy returns the last-buy timestamp for outcome.
func (s *BotState) lastBuy(outcome types.Outcome) time.Time {
	if outcome == types.Yes {
		return s.LastBuyYes
	}
	return s.LastBuyNo
}

// recordBuy stamps the last-buy timestamp, and updates round-robin memory
// only when the buy came from the round-robin priorities (spec.md §4.7
// step 9: "update round-robin memory on P2/P3") — a P0 closeout or P1
// imbalance buy must not perturb the subsequent alternation.
func (s *BotState) recordBuy(outcome types.Outcome, now time.Time, priority string) {
	if outcome == types.Yes {
		s.LastBuyYes = now
	} else {
		s.LastBuyNo = now
	}
	if priority == "round_robin_a" || priority == "round_robin_b" {
		s.LastBoughtLeg = outcome
	}
}

// EffectivePosition is one leg's filled+pending size and weighted average
// entry, as used by the lagging-leg and price-ceiling checks (spec.md
// §4.7 step 2).
type EffectivePosition struct {
	Filled      float64
	Pending     float64
	FilledAvg   float64 // avg entry over filled shares only
	PendingAvg  float64 // avg entry over pending (resting) shares only
}

// Size is filled + pending.
func (e EffectivePosition) Size() float64 {
	return e.Filled + e.Pending
}

// WeightedAvg is the size-weighted average entry across filled and
// pending shares (spec.md §4.7 step 2 "weighted effective averages").
func (e EffectivePosition) WeightedAvg() float64 {
	size := e.Size()
	if size <= 0 {
		return 0
	}
	return (e.Filled*e.FilledAvg + e.Pending*e.PendingAvg) / size
}
