package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/binarybot/pkg/types"
)

// FillEvent is an asynchronous fill confirmation from the gateway
// (spec.md §3 "Order gateway interface").
type FillEvent struct {
	OrderID string
	Price   float64
	Qty     float64
	IsFinal bool
}

// OrderGateway is the outbound collaborator interface: place/cancel
// orders, receiving asynchronous fill callbacks (spec.md §6 "Order
// gateway interface"). Errors are classified via types.OrderError's
// Transient field.
type OrderGateway interface {
	PlaceLimit(ctx context.Context, side types.Side, outcome types.Outcome, price, qty float64) (orderID string, err error)
	Cancel(ctx context.Context, orderID string) error
	Fills() <-chan FillEvent
}

// PaperGateway is a dry-run OrderGateway: it records a pending order
// and fills it immediately at the requested price, without consulting
// any market quote, mirroring the teacher's paper-trading executor mode
// but driven by direct calls instead of an opportunity channel.
type PaperGateway struct {
	logger *zap.Logger
	mu     sync.Mutex
	open   map[string]pendingOrder
	fills  chan FillEvent
}

type pendingOrder struct {
	side    types.Side
	outcome types.Outcome
	price   float64
	qty     float64
}

// NewPaperGateway creates a dry-run gateway with a buffered fill channel.
func NewPaperGateway(logger *zap.Logger, bufferSize int) *PaperGateway {
	return &PaperGateway{
		logger: logger,
		open:   make(map[string]pendingOrder),
		fills:  make(chan FillEvent, bufferSize),
	}
}

// PlaceLimit records the order and immediately emits a full fill at the
// requested price (paper trading assumes infinite liquidity at the
// quoted price, matching the teacher's paper executor semantics).
func (g *PaperGateway) PlaceLimit(ctx context.Context, side types.Side, outcome types.Outcome, price, qty float64) (string, error) {
	id := uuid.New().String()

	g.mu.Lock()
	g.open[id] = pendingOrder{side: side, outcome: outcome, price: price, qty: qty}
	g.mu.Unlock()

	g.logger.Debug("paper-order-placed", zap.String("order-id", id),
		zap.String("side", string(side)), zap.String("outcome", string(outcome)),
		zap.Float64("price", price), zap.Float64("qty", qty))

	select {
	case g.fills <- FillEvent{OrderID: id, Price: price, Qty: qty, IsFinal: true}:
	default:
		g.logger.Warn("paper-gateway-fill-channel-full-dropping-fill", zap.String("order-id", id))
	}

	return id, nil
}

// Cancel removes a still-open paper order. Orders are filled
// synchronously on placement, so this only matters if the caller races
// a cancel against an in-flight placement.
func (g *PaperGateway) Cancel(ctx context.Context, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.open, orderID)
	return nil
}

// Fills streams fill confirmations.
func (g *PaperGateway) Fills() <-chan FillEvent { return g.fills }

// stopDeadline bounds how long Stop waits for resting orders to cancel
// before giving up (spec.md §5 "Cancellation and timeouts" — 5s default).
const stopDeadline = 5 * time.Second

// CancelAll best-effort cancels every currently open order within
// stopDeadline, used when a bot transitions to stopping.
func (g *PaperGateway) CancelAll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, stopDeadline)
	defer cancel()

	g.mu.Lock()
	ids := make([]string, 0, len(g.open))
	for id := range g.open {
		ids = append(ids, id)
	}
	g.mu.Unlock()

	for _, id := range ids {
		select {
		case <-ctx.Done():
			g.logger.Warn("cancel-all-deadline-exceeded", zap.Int("remaining", len(ids)))
			return
		default:
			_ = g.Cancel(ctx, id)
		}
	}
}
