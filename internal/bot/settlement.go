package bot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/binarybot/pkg/types"
)

// SettlementChecker reports whether a market has resolved, and to which
// outcome, so a bot holding a position past the market's end time can
// realize its terminal PnL instead of waiting forever on a quote that
// will never arrive (out of scope per spec.md: the exchange gateway
// itself; this is the narrow interface the runtime consumes it
// through). Grounded on kalshi-btc15m's pollSettlement, which polls
// GetMarket for a non-empty Result field on the same cadence used here.
type SettlementChecker interface {
	CheckSettlement(ctx context.Context, marketID string) (resolved bool, yesWon bool, err error)
}

// settlementPollInterval matches kalshi-btc15m's pollSettlement cadence.
const settlementPollInterval = 10 * time.Second

// settlementGiveUpAfter bounds how long the runtime polls after a
// market's scheduled end before giving up and marking it settled
// without a confirmed result, matching kalshi-btc15m's 15-minute bail-out.
const settlementGiveUpAfter = 15 * time.Minute

// pollSettlement checks whether the bot's market has resolved once its
// scheduled end time has passed, realizing terminal PnL on both legs
// and marking the instance settled so onSnapshot stops trading it.
func (r *Runtime) pollSettlement(ctx context.Context) {
	if r.settlement == nil {
		return
	}

	in := r.instance
	in.Lock()
	marketEnd := marketEndTime(in)
	alreadySettled := in.Settled
	sincePoll := time.Since(in.LastSettlementPoll)
	in.Unlock()

	if alreadySettled || marketEnd.IsZero() || time.Now().Before(marketEnd) {
		return
	}
	if sincePoll < settlementPollInterval {
		return
	}

	in.Lock()
	in.LastSettlementPoll = time.Now()
	in.Unlock()

	if time.Since(marketEnd) > settlementGiveUpAfter {
		r.logger.Error("settlement-timeout-giving-up", zap.String("bot_id", in.Bot.ID), zap.String("market_id", in.Bot.MarketID))
		SettlementTimeoutsTotal.Inc()
		r.markSettled(ctx, false, false)
		return
	}

	resolved, yesWon, err := r.settlement.CheckSettlement(ctx, in.Bot.MarketID)
	if err != nil {
		r.logger.Warn("settlement-poll-failed", zap.String("bot_id", in.Bot.ID), zap.Error(err))
		return
	}
	if !resolved {
		r.logger.Debug("awaiting-settlement", zap.String("bot_id", in.Bot.ID), zap.Duration("since_close", time.Since(marketEnd)))
		return
	}

	r.markSettled(ctx, true, yesWon)
}

// markSettled realizes terminal PnL for both legs at their resolved
// value ($1 for the winning outcome, $0 for the losing one) and flags
// the instance so the runtime stops issuing new decisions for it.
func (r *Runtime) markSettled(ctx context.Context, confirmed, yesWon bool) {
	in := r.instance
	in.Lock()
	defer in.Unlock()

	in.Settled = true

	settle := func(outcome types.Outcome, won bool) {
		pos := in.Book.Yes
		if outcome == types.No {
			pos = in.Book.No
		}
		if pos.Size <= 0 {
			return
		}
		price := 0.0
		if won {
			price = 1.0
		}

		qty, pnl, _ := in.Book.Sell(outcome, price, pos.Size)
		if qty <= 0 {
			return
		}

		trade := types.Trade{
			ID: uuid.New().String(), BotID: in.Bot.ID, MarketID: in.Bot.MarketID,
			Timestamp: time.Now(), Side: types.Sell, Outcome: outcome,
			FillPrice: price, Quantity: qty, PnL: pnl, Reason: "settlement",
		}

		bgCtx := context.Background()
		go func() {
			if err := r.repo.AppendTrade(bgCtx, trade); err != nil {
				r.logger.Warn("append-settlement-trade-failed", zap.String("bot_id", in.Bot.ID), zap.Error(err))
			}
		}()
	}

	settle(types.Yes, confirmed && yesWon)
	settle(types.No, confirmed && !yesWon)

	r.logger.Info("bot-settled",
		zap.String("bot_id", in.Bot.ID),
		zap.Bool("confirmed", confirmed),
		zap.Bool("yes_won", yesWon))
}
