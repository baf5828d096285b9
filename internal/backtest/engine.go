package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mselser95/binarybot/internal/ledger"
	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/internal/ta50"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

// SessionData bundles one recording session with its ticks and
// snapshots, already ordered by timestamp (spec.md §3 "Recording
// Session").
type SessionData struct {
	Session   types.RecordingSession
	Ticks     []types.Tick
	Snapshots []types.OrderBookSnapshot
}

// Run replays one or more sessions through the Time-Above-0.5 pipeline
// and the limit-order matcher exactly as the live runtime would invoke
// them (spec.md §4.8). Returns an error whose message starts with
// types.ErrBacktestNoData if every session is empty after validation, and
// an error for an execution mode other than immediate or limit.
func Run(cfg RunConfig, sessions []SessionData, params config.StrategyParams) (RunResult, error) {
	if cfg.ExecutionMode == "" {
		cfg.ExecutionMode = ModeLimit
	}
	if cfg.ExecutionMode != ModeImmediate && cfg.ExecutionMode != ModeLimit {
		return RunResult{}, fmt.Errorf("unknown execution mode %q", cfg.ExecutionMode)
	}

	start := time.Now()
	result := RunResult{}

	book := ledger.NewBook("backtest", cfg.InitialCapital, params.QMax)
	st := &state.State{Tau: 0.5}

	anyEvaluated := false

	for _, sd := range sessions {
		prepared, discarded, corrected := PrepareSnapshots(sd.Snapshots, ta50Consensus)
		result.SnapshotsDiscarded += discarded
		result.SnapshotsCorrected += corrected
		SnapshotsDiscardedTotal.Add(float64(discarded))
		SnapshotsCorrectedTotal.Add(float64(corrected))

		if len(prepared) == 0 {
			continue
		}
		anyEvaluated = true

		breakdown := runSession(cfg, sd, prepared, params, book, st, &result)
		result.Sessions = append(result.Sessions, breakdown)
	}

	if !anyEvaluated {
		return result, fmt.Errorf("%s: no valid snapshots across %d session(s)", types.ErrBacktestNoData, len(sessions))
	}

	RunsCompletedTotal.WithLabelValues(string(cfg.ExecutionMode)).Inc()
	RunDurationSeconds.Observe(time.Since(start).Seconds())
	MatcherFillRate.Observe(result.MatcherStats.FillRate)

	return result, nil
}

// minEquitySampleInterval bounds how often equity points are recorded,
// independent of the strategy's own rebalance cadence (spec.md §4.8
// "sampled at >= 5-second intervals").
const minEquitySampleInterval = 5 * time.Second

// ta50Consensus adapts ta50.ComputeConsensus to the narrower consensusFn
// signature PrepareSnapshots takes (keeps ta50's richer ConsensusResult
// type out of the scheduling helper).
func ta50Consensus(yesBid, yesAsk, noBid, noAsk float64) (p, spreadC float64, valid bool) {
	res := ta50.ComputeConsensus(yesBid, yesAsk, noBid, noAsk)
	return res.P, res.SpreadC, res.Valid
}

func runSession(cfg RunConfig, sd SessionData, prepared []PreparedSnapshot, params config.StrategyParams, book *ledger.Book, st *state.State, result *RunResult) SessionBreakdown {
	matcher := NewMatcher()
	orders := make(map[string]*types.LimitOrder)

	book.Yes = types.Position{BotID: book.BotID, Outcome: types.Yes}
	book.No = types.Position{BotID: book.BotID, Outcome: types.No}

	schedule := EvaluationSchedule(prepared, params.RebalanceInterval)

	var lastEvalTime time.Time
	var lastDecisionTime, lastFillTime, lastDirectionChangeTime time.Time
	var lastEquitySampleTime time.Time
	currentDirection := types.Flat

	tradesBefore := len(result.Trades)
	var sessionPnL float64

	sampleEquity := func(at time.Time, yesBid, noBid float64) {
		if !lastEquitySampleTime.IsZero() && at.Sub(lastEquitySampleTime) < minEquitySampleInterval {
			return
		}
		result.Equity = append(result.Equity, EquityPoint{
			Timestamp: at,
			Cash:      book.Cash,
			Equity:    book.MarkToMarket(yesBid, noBid),
		})
		lastEquitySampleTime = at
	}

	for _, idx := range schedule {
		snap := prepared[idx]
		evalTime := snap.Snapshot.Timestamp

		if cfg.ExecutionMode == ModeLimit && !lastEvalTime.IsZero() {
			window := ticksInRange(sd.Ticks, lastEvalTime, evalTime)
			fills := matcher.Sweep(window, func(id string) types.Outcome { return orders[id].Outcome })
			for _, f := range fills {
				trade := applyFill(book, orders[f.OrderID], f, evalTime)
				result.Trades = append(result.Trades, trade)
				sessionPnL += trade.PnL
				lastFillTime = evalTime
			}
		}

		timeToResolution := timeToResolutionMinutes(sd.Session.EndTime, evalTime)

		sig := ta50.Signal(st, params, snap.ConsensusP, snap.SpreadC, timeToResolution, evalTime)
		exp := ta50.Exposure(params, snap.ConsensusP, sig.E, book.Yes.Size, book.No.Size, timeToResolution)
		action, hasAction := ta50.Decide(params, exp, book.Yes.Size, book.No.Size)

		if hasAction {
			verdict := ta50.Validate(params, evalTime, lastDecisionTime, lastFillTime, lastDirectionChangeTime,
				snap.SpreadC, exp.IsExpanding, currentDirection, action.TargetDirection, action.IsRiskReducing())
			lastDecisionTime = evalTime
			if verdict.Allowed {
				if currentDirection != action.TargetDirection {
					lastDirectionChangeTime = evalTime
					currentDirection = action.TargetDirection
				}

				bid, ask := snap.Snapshot.BestBidAsk(action.Outcome)
				trade, pending := executeAction(cfg, book, matcher, orders, action, bid, ask, evalTime)
				if trade != nil {
					result.Trades = append(result.Trades, *trade)
					sessionPnL += trade.PnL
					lastFillTime = evalTime
				}
				_ = pending
			}
		}

		yesBid, _ := snap.Snapshot.BestBidAsk(types.Yes)
		noBid, _ := snap.Snapshot.BestBidAsk(types.No)
		sampleEquity(evalTime, yesBid, noBid)

		lastEvalTime = evalTime
	}

	// End of backtest: expire resting orders, sell out both legs at best bid.
	matcher.ExpireAll()
	lastSnap := prepared[len(prepared)-1].Snapshot
	if book.Yes.Size > 0 {
		_, pnl, _ := book.Sell(types.Yes, lastSnap.BidYes, book.Yes.Size)
		sessionPnL += pnl
		result.Trades = append(result.Trades, types.Trade{
			ID: uuid.New().String(), BotID: book.BotID, MarketID: sd.Session.MarketID,
			Timestamp: lastSnap.Timestamp, Side: types.Sell, Outcome: types.Yes,
			FillPrice: lastSnap.BidYes, Quantity: book.Yes.Size, PnL: pnl, Reason: "end_of_backtest",
		})
	}
	if book.No.Size > 0 {
		_, pnl, _ := book.Sell(types.No, lastSnap.BidNo, book.No.Size)
		sessionPnL += pnl
		result.Trades = append(result.Trades, types.Trade{
			ID: uuid.New().String(), BotID: book.BotID, MarketID: sd.Session.MarketID,
			Timestamp: lastSnap.Timestamp, Side: types.Sell, Outcome: types.No,
			FillPrice: lastSnap.BidNo, Quantity: book.No.Size, PnL: pnl, Reason: "end_of_backtest",
		})
	}
	result.Equity = append(result.Equity, EquityPoint{
		Timestamp: lastSnap.Timestamp,
		Cash:      book.Cash,
		Equity:    book.MarkToMarket(lastSnap.BidYes, lastSnap.BidNo),
	})

	matcherStats := matcher.Stats()
	result.MatcherStats = result.MatcherStats.Merge(matcherStats)

	return SessionBreakdown{
		SessionID:    sd.Session.ID,
		Trades:       len(result.Trades) - tradesBefore,
		PnL:          sessionPnL,
		MatcherStats: matcherStats,
	}
}

// executeAction turns a decided TradeAction into a fill (immediate mode)
// or a resting/marketable limit order (limit mode), per spec.md §4.8
// step 2.
func executeAction(cfg RunConfig, book *ledger.Book, matcher *Matcher, orders map[string]*types.LimitOrder, action ta50.TradeAction, bid, ask float64, now time.Time) (*types.Trade, bool) {
	if cfg.ExecutionMode == ModeImmediate {
		price := ask
		if action.Side == types.Sell {
			price = bid
		}
		return fillDirect(book, action, price, now), false
	}

	tickSize := 0.01
	priceDecision := ta50.Price(action, bidIf(action.Outcome == types.Yes, bid, 0), askIf(action.Outcome == types.Yes, ask, 0), bidIf(action.Outcome != types.Yes, bid, 0), askIf(action.Outcome != types.Yes, ask, 0), tickSize, absE(action))

	order := &types.LimitOrder{
		ID:        uuid.New().String(),
		Side:      action.Side,
		Outcome:   action.Outcome,
		Price:     priceDecision.Price,
		Quantity:  action.Quantity,
		CreatedAt: now,
		Status:    types.OrderOpen,
	}
	orders[order.ID] = order

	fill, immediate := matcher.Add(order, bid, ask)
	if !immediate {
		return nil, true
	}

	trade := applyFill(book, order, fill, now)
	trade.Reason = action.Reason
	return &trade, false
}

func bidIf(cond bool, bid, fallback float64) float64 {
	if cond {
		return bid
	}
	return fallback
}

func askIf(cond bool, ask, fallback float64) float64 {
	if cond {
		return ask
	}
	return fallback
}

func absE(action ta50.TradeAction) float64 {
	if action.IsUnwind {
		return 1 // Price picks the unwind confidence from action.IsUnwind; this value is not read there
	}
	return 0.2
}

func fillDirect(book *ledger.Book, action ta50.TradeAction, price float64, now time.Time) *types.Trade {
	if action.Side == types.Buy {
		qty, _ := book.Buy(action.Outcome, price, action.Quantity)
		if qty <= 0 {
			return nil
		}
		return &types.Trade{
			ID: uuid.New().String(), BotID: book.BotID, Timestamp: now,
			Side: types.Buy, Outcome: action.Outcome, FillPrice: price, Quantity: qty, Reason: action.Reason,
		}
	}

	qty, pnl, _ := book.Sell(action.Outcome, price, action.Quantity)
	if qty <= 0 {
		return nil
	}
	return &types.Trade{
		ID: uuid.New().String(), BotID: book.BotID, Timestamp: now,
		Side: types.Sell, Outcome: action.Outcome, FillPrice: price, Quantity: qty, PnL: pnl, Reason: action.Reason,
	}
}

func applyFill(book *ledger.Book, order *types.LimitOrder, f Fill, now time.Time) types.Trade {
	var qty, pnl float64
	if order.Side == types.Buy {
		qty, _ = book.Buy(order.Outcome, f.FillPrice, f.FillQty)
	} else {
		qty, pnl, _ = book.Sell(order.Outcome, f.FillPrice, f.FillQty)
	}

	return types.Trade{
		ID: uuid.New().String(), BotID: book.BotID, Timestamp: now,
		Side: order.Side, Outcome: order.Outcome, FillPrice: f.FillPrice, Quantity: qty, PnL: pnl,
	}
}

func ticksInRange(ticks []types.Tick, after, upTo time.Time) []types.Tick {
	var out []types.Tick
	for _, t := range ticks {
		if t.Timestamp.After(after) && !t.Timestamp.After(upTo) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func timeToResolutionMinutes(end, now time.Time) float64 {
	if end.IsZero() {
		return 15
	}
	remaining := end.Sub(now).Minutes()
	if remaining < 0 {
		return 0
	}
	return remaining
}
