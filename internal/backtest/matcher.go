// Package backtest replays recorded order-book snapshots and ticks
// through the Time-Above-0.5 pipeline and a simulated limit-order
// matcher (spec.md §4.8, §4.9). Grounded on the teacher's executor.go
// for the paper-trade simulation loop shape and on
// akshitanchan-execution-fairness-simulator's price-time-priority book
// for the matcher's crossing-rule idiom.
package backtest

import (
	"sort"

	"github.com/mselser95/binarybot/pkg/types"
)

// Fill is one recorded match of a resting order against a historical tick
// (spec.md §4.9).
type Fill struct {
	OrderID        string
	FillPrice      float64
	FillQty        float64
	Timestamp      int64 // unix millis of the matching types.Tick.Timestamp (truncated to ms)
	IsFullyFilled  bool
}

// Matcher holds the set of pending simulated orders and matches them
// against a time-ordered tick stream (spec.md §4.9).
type Matcher struct {
	orders map[string]*types.LimitOrder

	// created/immediateFills track orders filled marketable-at-creation
	// (spec.md §4.9 "Marketable check at creation"), which never enter
	// orders so they'd otherwise be invisible to Stats.
	created        int
	immediateFills int
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{orders: make(map[string]*types.LimitOrder)}
}

// Add registers a resting order, first checking whether it is marketable
// against the given snapshot (crosses the opposite side immediately) and
// if so returns that immediate fill instead of resting it (spec.md §4.9
// "Marketable check at creation").
func (m *Matcher) Add(order *types.LimitOrder, bestBid, bestAsk float64) (Fill, bool) {
	m.created++

	if order.Side == types.Buy && bestAsk > 0 && order.Price >= bestAsk {
		return m.fillImmediately(order, bestAsk, order.CreatedAt.UnixMilli())
	}
	if order.Side == types.Sell && bestBid > 0 && order.Price <= bestBid {
		return m.fillImmediately(order, bestBid, order.CreatedAt.UnixMilli())
	}

	m.orders[order.ID] = order
	return Fill{}, false
}

func (m *Matcher) fillImmediately(order *types.LimitOrder, price float64, ts int64) (Fill, bool) {
	qty := order.Remaining()
	order.ApplyFill(qty)
	m.immediateFills++
	return Fill{
		OrderID:       order.ID,
		FillPrice:     price,
		FillQty:       qty,
		Timestamp:     ts,
		IsFullyFilled: true,
	}, true
}

// Sweep matches every pending order whose outcome matches a tick and
// whose created_at precedes the tick's timestamp, across ticks in
// ascending timestamp order (spec.md §4.9 "Tick sweep over a window").
// Returns fills in chronological order.
func (m *Matcher) Sweep(ticks []types.Tick, outcomeFor func(orderID string) types.Outcome) []Fill {
	sorted := append([]types.Tick(nil), ticks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	var fills []Fill
	for _, tick := range sorted {
		for _, order := range m.sortedOpenOrders() {
			if outcomeFor(order.ID) != tick.Outcome {
				continue
			}
			if !order.CreatedAt.Before(tick.Timestamp) {
				continue
			}
			if order.Remaining() <= 0 {
				continue
			}
			if !crosses(order, tick.Price) {
				continue
			}

			fillQty := order.Remaining()
			if tick.Size < fillQty {
				fillQty = tick.Size
			}
			order.ApplyFill(fillQty)

			fills = append(fills, Fill{
				OrderID:       order.ID,
				FillPrice:     tick.Price,
				FillQty:       fillQty,
				Timestamp:     tick.Timestamp.UnixMilli(),
				IsFullyFilled: order.Status == types.OrderFilled,
			})
		}
	}
	return fills
}

// crosses reports whether tickPrice triggers order's crossing rule: BUY
// fills when tick price <= order price; SELL fills when tick price >=
// order price (spec.md §4.9 "Price crossing rule").
func crosses(order *types.LimitOrder, tickPrice float64) bool {
	if order.Side == types.Buy {
		return tickPrice <= order.Price
	}
	return tickPrice >= order.Price
}

// sortedOpenOrders returns pending orders in a stable, deterministic
// order (by ID) so replay is reproducible across runs.
func (m *Matcher) sortedOpenOrders() []*types.LimitOrder {
	ids := make([]string, 0, len(m.orders))
	for id, o := range m.orders {
		if o.Remaining() > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]*types.LimitOrder, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.orders[id])
	}
	return out
}

// ExpireAll marks every still-open order as expired, returning their
// unfilled quantity summed (spec.md §4.9 "Expiry" — no cash changes).
func (m *Matcher) ExpireAll() (expiredCount int, unfilledQty float64) {
	for _, o := range m.orders {
		if o.Remaining() <= 0 {
			continue
		}
		o.Status = types.OrderExpired
		unfilledQty += o.Remaining()
		expiredCount++
	}
	return expiredCount, unfilledQty
}

// Stats summarizes the matcher's lifetime activity (spec.md §4.9
// "Statistics per run").
type Stats struct {
	OrdersCreated int
	OrdersFilled  int
	OrdersExpired int
	FillRate      float64
}

// Stats computes run statistics from the orders currently (and
// historically) tracked by the matcher, including orders filled
// marketable-at-creation (spec.md §4.9).
func (m *Matcher) Stats() Stats {
	filled := m.immediateFills
	var expired int
	for _, o := range m.orders {
		switch o.Status {
		case types.OrderFilled:
			filled++
		case types.OrderExpired:
			expired++
		}
	}
	rate := 0.0
	if m.created > 0 {
		rate = float64(filled) / float64(m.created)
	}
	return Stats{OrdersCreated: m.created, OrdersFilled: filled, OrdersExpired: expired, FillRate: rate}
}

// Merge combines per-session Stats into a running multi-session total
// (spec.md §4.9's statistics are a property of a whole backtest run,
// not any single session it replays).
func (s Stats) Merge(other Stats) Stats {
	created := s.OrdersCreated + other.OrdersCreated
	filled := s.OrdersFilled + other.OrdersFilled
	rate := 0.0
	if created > 0 {
		rate = float64(filled) / float64(created)
	}
	return Stats{
		OrdersCreated: created,
		OrdersFilled:  filled,
		OrdersExpired: s.OrdersExpired + other.OrdersExpired,
		FillRate:      rate,
	}
}
