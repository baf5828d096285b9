package bot

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/feed"
	"github.com/mselser95/binarybot/pkg/types"
)

// sweepStaleOrders cancels resting live orders whose price has drifted
// more than cfg.MaxPriceDistance from the current best quote, or that
// have aged past cfg.MaxOrderAge, letting the strategy re-issue on its
// next step (spec.md §4.10 step 4).
func (r *Runtime) sweepStaleOrders(ctx context.Context) {
	in := r.instance
	in.Lock()
	snap := r.lastSnapshot
	if snap.Timestamp.IsZero() || in.Bot.Mode != types.ModeLive || len(in.PendingOrders) == 0 {
		in.Unlock()
		return
	}

	stale := make([]string, 0)
	now := time.Now()
	for id, order := range in.PendingOrders {
		if order.Status == types.OrderCancelled || order.Status == types.OrderExpired {
			continue
		}
		tooOld := now.Sub(order.CreatedAt) > r.cfg.MaxOrderAge

		// Price distance needs a fresh quote to measure against; the age
		// check above applies either way.
		tooFar := false
		if !feed.StaleSnapshot(snap, now, r.cfg.MaxOrderAge) {
			bid, ask := snap.BestBidAsk(order.Outcome)
			ref := bid
			if order.Side == types.Sell {
				ref = ask
			}
			tooFar = ref > 0 && math.Abs(order.Price-ref) > r.cfg.MaxPriceDistance
		}

		if tooOld || tooFar {
			stale = append(stale, id)
		}
	}
	in.Unlock()

	for _, id := range stale {
		cancelCtx, cancel := context.WithTimeout(ctx, r.cfg.OrderSubmitDeadline)
		err := r.gateway.Cancel(cancelCtx, id)
		cancel()
		if err != nil {
			r.logger.Warn("stale-order-cancel-failed", zap.String("bot_id", in.Bot.ID), zap.String("order_id", id), zap.Error(err))
			continue
		}

		in.Lock()
		delete(in.PendingOrders, id)
		in.Unlock()

		OrdersCancelledStaleTotal.Inc()
		r.logger.Info("stale-order-cancelled", zap.String("bot_id", in.Bot.ID), zap.String("order_id", id))
	}
}
