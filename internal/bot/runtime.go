package bot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/arbitrage"
	"github.com/mselser95/binarybot/internal/feed"
	"github.com/mselser95/binarybot/internal/markets"
	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/internal/ta50"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

// StrategyContext carries everything one strategy step needs (spec.md
// §4.10 step 1): current best bid/ask for both legs, the market's tick
// size, filled+pending positions per leg, wall time, and the market's
// scheduled end time.
type StrategyContext struct {
	Snapshot  types.OrderBookSnapshot
	TickSize  float64
	MinSize   float64
	YesPos    types.Position
	NoPos     types.Position
	Now       time.Time
	BotStart  time.Time
	MarketEnd time.Time
}

// Runtime drives one bot's strategy step per inbound snapshot and routes
// fills back into its ledger; trade ticks do not trigger a step (spec.md
// §4.10, the "Bot
// Orchestration shim" of §2). One Runtime per Instance; multiple
// runtimes execute independently across goroutines with no shared
// mutable state besides the Registry and storage.Repository, both of
// which are already safe for concurrent use.
type Runtime struct {
	instance *Instance
	feed     feed.MarketFeed
	gateway  feed.OrderGateway
	ticks    *markets.TickCache
	repo     storage.Repository
	cfg      *config.Config
	logger   *zap.Logger

	lastSnapshot types.OrderBookSnapshot
	settlement   SettlementChecker
}

// WithSettlementChecker attaches the collaborator pollSettlement uses to
// learn a market's resolution. Optional: a Runtime with none configured
// simply never settles on its own (the orchestrator above it is assumed
// to stop the bot by other means, e.g. a scheduler deadline).
func (r *Runtime) WithSettlementChecker(sc SettlementChecker) *Runtime {
	r.settlement = sc
	return r
}

// NewRuntime wires one bot instance to its feed, gateway, tick cache,
// and repository.
func NewRuntime(in *Instance, mf feed.MarketFeed, gw feed.OrderGateway, tc *markets.TickCache, repo storage.Repository, cfg *config.Config, logger *zap.Logger) *Runtime {
	return &Runtime{
		instance: in,
		feed:     mf,
		gateway:  gw,
		ticks:    tc,
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run is the bot's single-threaded event loop: snapshots drive strategy
// steps, trade ticks are drained without stepping the strategy, gateway
// fills update the ledger, and a periodic timer
// sweeps stale resting orders (spec.md §4.10, §5 "single-threaded per
// bot"). Returns when ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) {
	staleTicker := time.NewTicker(r.cfg.StaleOrderScanEvery)
	defer staleTicker.Stop()

	settleTicker := time.NewTicker(10 * time.Second)
	defer settleTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case snap, ok := <-r.feed.Snapshots():
			if !ok {
				return
			}
			r.onSnapshot(ctx, snap)

		case <-r.feed.Ticks():
			// Trade prints drive the backtest matcher, not the live
			// runtime (the gateway itself confirms fills); drained here
			// only so the feed's tick channel never backs up.

		case fill, ok := <-r.gateway.Fills():
			if !ok {
				return
			}
			r.onFill(ctx, fill)

		case <-staleTicker.C:
			r.sweepStaleOrders(ctx)

		case <-settleTicker.C:
			r.pollSettlement(ctx)
		}
	}
}

// onSnapshot is one full iteration of spec.md §4.10 steps 1-3.
func (r *Runtime) onSnapshot(ctx context.Context, snap types.OrderBookSnapshot) {
	in := r.instance
	in.Lock()
	defer in.Unlock()

	r.lastSnapshot = snap

	if in.Settled {
		return
	}

	meta, ok := r.ticks.Get(in.Bot.MarketID)
	tickSize := 0.01
	if ok {
		tickSize = meta.TickSize
	}

	sctx := StrategyContext{
		Snapshot:  snap,
		TickSize:  tickSize,
		MinSize:   meta.MinSize,
		YesPos:    effectivePosition(in, types.Yes),
		NoPos:     effectivePosition(in, types.No),
		Now:       snap.Timestamp,
		BotStart:  in.Bot.StartedAt,
		MarketEnd: marketEndTime(in),
	}
	if sctx.Now.IsZero() {
		sctx.Now = time.Now()
	}

	StepsTotal.WithLabelValues(string(in.Strategy)).Inc()

	if in.Breaker != nil && !in.Breaker.IsEnabled() {
		CircuitBreakerBlocksTotal.Inc()
		return
	}

	switch in.Strategy {
	case StrategyArbitrage:
		r.stepArbitrage(ctx, sctx)
	default:
		r.stepTA50(ctx, sctx)
	}
}

// effectivePosition reports a leg's filled size from the ledger plus
// pending quantity still resting in an open order for that leg.
func effectivePosition(in *Instance, outcome types.Outcome) types.Position {
	pos := in.Book.Yes
	if outcome == types.No {
		pos = in.Book.No
	}
	for _, o := range in.PendingOrders {
		if o.Outcome == outcome && o.Side == types.Buy {
			pos.Size += o.Remaining()
		}
	}
	return pos
}

func marketEndTime(in *Instance) time.Time {
	if raw, ok := in.Bot.StrategyConfig["market_end_time"]; ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// stepTA50 runs the Consensus→Signal→Exposure→Decision→Risk pipeline for
// one snapshot (spec.md §4.2-§4.6), identically to internal/backtest's
// runSession but against live order-book state instead of a replayed
// session.
func (r *Runtime) stepTA50(ctx context.Context, sctx StrategyContext) {
	in := r.instance
	snap := sctx.Snapshot

	consensus := ta50.ComputeConsensus(snap.BidYes, snap.AskYes, snap.BidNo, snap.AskNo)
	if !consensus.Valid {
		return
	}

	timeToResolution := 15.0
	if !sctx.MarketEnd.IsZero() {
		remaining := sctx.MarketEnd.Sub(sctx.Now).Minutes()
		if remaining < 0 {
			remaining = 0
		}
		timeToResolution = remaining
	}

	sig := ta50.Signal(in.StrategyState, in.Params, consensus.P, consensus.SpreadC, timeToResolution, sctx.Now)

	exp := ta50.Exposure(in.Params, consensus.P, sig.E, sctx.YesPos.Size, sctx.NoPos.Size, timeToResolution)
	action, hasAction := ta50.Decide(in.Params, exp, sctx.YesPos.Size, sctx.NoPos.Size)
	if !hasAction {
		return
	}

	verdict := ta50.Validate(in.Params, sctx.Now, in.LastDecisionTime, in.LastFillTime, in.LastDirectionChangeTime,
		consensus.SpreadC, exp.IsExpanding, in.CurrentDirection, action.TargetDirection, action.IsRiskReducing())
	in.LastDecisionTime = sctx.Now
	if !verdict.Allowed {
		r.logger.Debug("ta50-decision-rejected", zap.String("bot_id", in.Bot.ID), zap.String("reason", verdict.Reason))
		return
	}

	if in.CurrentDirection != action.TargetDirection {
		in.LastDirectionChangeTime = sctx.Now
		in.CurrentDirection = action.TargetDirection
	}

	DecisionsTotal.WithLabelValues(string(in.Strategy), string(action.Outcome)).Inc()

	absE := 0.2
	if action.IsUnwind {
		absE = 1
	}
	priceDecision := ta50.Price(action, snap.BidYes, snap.AskYes, snap.BidNo, snap.AskNo, sctx.TickSize, absE)

	r.submit(ctx, action.Side, action.Outcome, priceDecision.Price, action.Quantity, action.Reason)
}

// stepArbitrage runs the leg-balancing decision cycle (spec.md §4.7)
// against live order-book state.
func (r *Runtime) stepArbitrage(ctx context.Context, sctx StrategyContext) {
	in := r.instance
	snap := sctx.Snapshot

	ain := arbitrage.Inputs{
		YesBid: snap.BidYes, YesAsk: snap.AskYes,
		NoBid: snap.BidNo, NoAsk: snap.AskNo,
		Yes: arbitrage.EffectivePosition{Filled: in.Book.Yes.Size, FilledAvg: in.Book.Yes.AvgEntry},
		No:  arbitrage.EffectivePosition{Filled: in.Book.No.Size, FilledAvg: in.Book.No.AvgEntry},
		Now: sctx.Now, BotStart: sctx.BotStart, MarketEnd: sctx.MarketEnd,
	}

	leg, ok := arbitrage.Decide(in.ArbitrageParams, in.ArbState, ain)
	if !ok {
		return
	}

	DecisionsTotal.WithLabelValues(string(in.Strategy), string(leg.Outcome)).Inc()

	price := ta50.RoundToTick(leg.Price, sctx.TickSize)
	r.submit(ctx, types.Buy, leg.Outcome, price, leg.Quantity, leg.Priority)
}

// submit routes a decided, already tick-rounded price to the gateway
// (live) or directly into the ledger (dry_run), recording a pending
// order in the live path (spec.md §4.10 step 3).
func (r *Runtime) submit(ctx context.Context, side types.Side, outcome types.Outcome, price, qty float64, reason string) {
	in := r.instance

	if in.Bot.Mode == types.ModeDryRun {
		r.fillDirect(side, outcome, price, qty, reason)
		OrdersPlacedTotal.WithLabelValues(string(types.ModeDryRun)).Inc()
		return
	}

	submitCtx, cancel := context.WithTimeout(ctx, r.cfg.OrderSubmitDeadline)
	defer cancel()

	orderID, err := r.gateway.PlaceLimit(submitCtx, side, outcome, price, qty)
	if err != nil {
		r.logger.Warn("order-placement-failed", zap.String("bot_id", in.Bot.ID), zap.Error(err))
		return
	}

	in.PendingOrders[orderID] = &types.LimitOrder{
		ID: orderID, Side: side, Outcome: outcome, Price: price, Quantity: qty,
		CreatedAt: time.Now(), Status: types.OrderOpen,
	}
	OrdersPlacedTotal.WithLabelValues(string(types.ModeLive)).Inc()
}

// fillDirect applies a dry-run fill straight to the ledger, then persists
// a trade record, the updated position and a telemetry sample in the
// background. The live fill path (onFill) persists only the trade record.
func (r *Runtime) fillDirect(side types.Side, outcome types.Outcome, price, qty float64, reason string) {
	in := r.instance

	var filledQty, pnl float64
	if side == types.Buy {
		filledQty, _ = in.Book.Buy(outcome, price, qty)
	} else {
		filledQty, pnl, _ = in.Book.Sell(outcome, price, qty)
	}
	if filledQty <= 0 {
		return
	}

	in.LastFillTime = time.Now()
	if in.Breaker != nil {
		in.Breaker.RecordTrade(filledQty * price)
	}
	FillsProcessedTotal.Inc()

	trade := types.Trade{
		ID: uuid.New().String(), BotID: in.Bot.ID, MarketID: in.Bot.MarketID,
		Timestamp: in.LastFillTime, Side: side, Outcome: outcome,
		FillPrice: price, Quantity: filledQty, PnL: pnl, Reason: reason,
	}

	bgCtx := context.Background()
	go func() {
		if err := r.repo.AppendTrade(bgCtx, trade); err != nil {
			r.logger.Warn("append-trade-failed", zap.String("bot_id", in.Bot.ID), zap.Error(err))
		}
		pos := in.Book.Yes
		if outcome == types.No {
			pos = in.Book.No
		}
		pos.BotID, pos.MarketID, pos.Outcome = in.Bot.ID, in.Bot.MarketID, outcome
		if err := r.repo.UpsertPosition(bgCtx, pos); err != nil {
			r.logger.Warn("upsert-position-failed", zap.String("bot_id", in.Bot.ID), zap.Error(err))
		}
		r.repo.AppendStrategyMetric(bgCtx, types.StrategyMetricSample{
			Timestamp: in.LastFillTime, BotID: in.Bot.ID,
			YesSize: in.Book.Yes.Size, NoSize: in.Book.No.Size,
		})
	}()
}

// onFill applies an asynchronous gateway fill confirmation to the ledger
// (spec.md §4.10 step 3 "on external fill confirmation").
func (r *Runtime) onFill(ctx context.Context, ev feed.FillEvent) {
	in := r.instance
	in.Lock()
	defer in.Unlock()

	order, ok := in.PendingOrders[ev.OrderID]
	if !ok {
		return
	}
	order.ApplyFill(ev.Qty)

	var filledQty, pnl float64
	if order.Side == types.Buy {
		filledQty, _ = in.Book.Buy(order.Outcome, ev.Price, ev.Qty)
	} else {
		filledQty, pnl, _ = in.Book.Sell(order.Outcome, ev.Price, ev.Qty)
	}

	in.LastFillTime = time.Now()
	if in.Breaker != nil {
		in.Breaker.RecordTrade(filledQty * ev.Price)
	}
	FillsProcessedTotal.Inc()

	if ev.IsFinal || order.Remaining() <= 0 {
		delete(in.PendingOrders, ev.OrderID)
	}

	trade := types.Trade{
		ID: uuid.New().String(), BotID: in.Bot.ID, MarketID: in.Bot.MarketID,
		Timestamp: in.LastFillTime, Side: order.Side, Outcome: order.Outcome,
		FillPrice: ev.Price, Quantity: filledQty, PnL: pnl,
	}

	bgCtx := context.Background()
	go func() {
		if err := r.repo.AppendTrade(bgCtx, trade); err != nil {
			r.logger.Warn("append-trade-failed", zap.String("bot_id", in.Bot.ID), zap.Error(err))
		}
	}()
}
