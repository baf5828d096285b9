// Package bot is the Bot Orchestration shim (spec.md §2): it drives one
// strategy step per tick/snapshot and routes fills, for however many
// bots are currently running. Each Instance owns its ledger, strategy
// state, and pending orders exclusively — no other goroutine mutates
// them while its Runtime is active (spec.md §5 "single-writer task").
// Grounded on the teacher's per-market MarketState shape from
// internal/orderbook combined with the kalshi-btc15m strategy engine's
// per-ticker bookkeeping (reconcilePositions, pollSettlement), since the
// teacher itself has no single-bot runtime loop to generalize from.
package bot

import (
	"sync"
	"time"

	"github.com/mselser95/binarybot/internal/arbitrage"
	"github.com/mselser95/binarybot/internal/ledger"
	"github.com/mselser95/binarybot/internal/risk"
	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

// StrategyKind selects which strategy core an Instance's Runtime invokes
// each step (spec.md §2: the platform runs two orthogonal strategy
// cores over a shared substrate).
type StrategyKind string

const (
	StrategyTA50      StrategyKind = "ta50"
	StrategyArbitrage StrategyKind = "arbitrage"
)

// Instance bundles one configured bot's runtime state: position/cash
// ledger, strategy state (both StrategyState and ArbState are set; the
// Runtime uses the one matching Strategy), pending resting orders, and an
// optional cash circuit breaker.
type Instance struct {
	mu sync.Mutex

	Bot      types.BotInstance
	Strategy StrategyKind

	Params          config.StrategyParams
	ArbitrageParams config.ArbitrageParams

	Book         *ledger.Book
	StrategyState *state.State
	ArbState     *arbitrage.BotState
	Breaker      *risk.Breaker

	PendingOrders map[string]*types.LimitOrder

	LastDecisionTime       time.Time
	LastFillTime           time.Time
	LastDirectionChangeTime time.Time
	CurrentDirection       types.Direction

	LastSettlementPoll time.Time
	Settled            bool
}

// NewInstance constructs a fresh Instance for a just-started bot. strat
// holds a pre-created *state.State (ta50) obtained from the shared
// state.Store so the orchestrator keeps one owner per bot id, per
// spec.md §9 "avoid owning references between strategy modules".
func NewInstance(b types.BotInstance, initialCapital float64, strat *state.State, arbState *arbitrage.BotState, params config.StrategyParams, arbParams config.ArbitrageParams) *Instance {
	return &Instance{
		Bot:             b,
		Strategy:        strategyKindFor(b.StrategySlug),
		Params:          params,
		ArbitrageParams: arbParams,
		Book:            ledger.NewBook(b.ID, initialCapital, params.QMax),
		StrategyState:   strat,
		ArbState:        arbState,
		PendingOrders:   make(map[string]*types.LimitOrder),
		CurrentDirection: types.Flat,
	}
}

// strategyKindFor classifies a bot's configured strategy slug. Any slug
// not recognized as arbitrage defaults to the TA50 pipeline, matching
// the teacher's permissive fallback-to-default convention elsewhere in
// config parsing.
func strategyKindFor(slug string) StrategyKind {
	if slug == string(StrategyArbitrage) {
		return StrategyArbitrage
	}
	return StrategyTA50
}

// Lock/Unlock expose the instance's single-writer mutex so a Runtime can
// serialize strategy steps against reconciliation/settlement polling
// running on the same Instance from a different goroutine (e.g. a
// ticker-driven settlement poll alongside the feed-driven step loop).
func (in *Instance) Lock()   { in.mu.Lock() }
func (in *Instance) Unlock() { in.mu.Unlock() }
