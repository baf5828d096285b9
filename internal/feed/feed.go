// Package feed wires the websocket transport and orderbook assembler
// into the MarketFeed interface the bot runtime depends on (spec.md §3
// "Market Feed interface", §6). Grounded on the teacher's websocket
// Manager for connection lifecycle and internal/orderbook's assembly
// shape.
package feed

import (
	"context"
	"time"

	"github.com/mselser95/binarybot/internal/orderbook"
	"github.com/mselser95/binarybot/pkg/types"
	"github.com/mselser95/binarybot/pkg/websocket"
)

// MarketFeed is the inbound collaborator interface the strategy
// pipeline runs against: a stream of two-leg snapshots and trade
// ticks for one or more subscribed markets (spec.md §3, §6).
type MarketFeed interface {
	Start(ctx context.Context) error
	Subscribe(ctx context.Context, marketID, yesTokenID, noTokenID string) error
	Snapshots() <-chan types.OrderBookSnapshot
	Ticks() <-chan types.Tick
	Connected() bool
	Close() error
}

// WSFeed is the live MarketFeed implementation: a websocket transport
// feeding an orderbook assembler.
type WSFeed struct {
	ws   *websocket.Manager
	book *orderbook.Manager
}

// Config bundles the websocket dial configuration (spec.md §6 WS_*
// fields) needed to construct a feed.
type Config = websocket.Config

// New creates a feed that will dial cfg.URL on Start.
func New(cfg Config) *WSFeed {
	ws := websocket.New(cfg)
	book := orderbook.New(&orderbook.Config{
		Logger:         cfg.Logger,
		MessageChannel: ws.MessageChan(),
	})
	return &WSFeed{ws: ws, book: book}
}

// Start dials the feed and begins assembling snapshots/ticks.
func (f *WSFeed) Start(ctx context.Context) error {
	if err := f.ws.Start(); err != nil {
		return err
	}
	return f.book.Start(ctx)
}

// Subscribe registers both legs' tokens for a market and subscribes the
// underlying websocket connection to them.
func (f *WSFeed) Subscribe(ctx context.Context, marketID, yesTokenID, noTokenID string) error {
	f.book.RegisterToken(yesTokenID, marketID, types.Yes)
	f.book.RegisterToken(noTokenID, marketID, types.No)
	return f.ws.Subscribe(ctx, []string{yesTokenID, noTokenID})
}

// Snapshots streams assembled two-leg order book snapshots.
func (f *WSFeed) Snapshots() <-chan types.OrderBookSnapshot { return f.book.SnapshotChan() }

// Ticks streams parsed trade prints.
func (f *WSFeed) Ticks() <-chan types.Tick { return f.book.TickChan() }

// Connected reports whether the underlying connection is currently up.
func (f *WSFeed) Connected() bool { return f.ws.Connected() }

// Close tears down the websocket connection and the assembler.
func (f *WSFeed) Close() error {
	if err := f.ws.Close(); err != nil {
		return err
	}
	return f.book.Close()
}

// StaleSnapshot reports whether a snapshot's age exceeds maxAge. The
// runtime's stale-order sweep uses it to skip price-distance checks when
// the last quote is too old; strategy steps do not consult it.
func StaleSnapshot(snap types.OrderBookSnapshot, now time.Time, maxAge time.Duration) bool {
	if snap.Timestamp.IsZero() {
		return true
	}
	return now.Sub(snap.Timestamp) > maxAge
}
