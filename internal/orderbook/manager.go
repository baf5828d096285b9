// Package orderbook assembles per-leg feed messages into the two-leg
// OrderBookSnapshot and Tick types the strategy pipeline consumes
// (spec.md §3 "Market Feed interface"). Grounded on the teacher's
// orderbook manager for the single-writer, channel-notified assembly
// shape; adapted from a per-token book cache into a per-market,
// two-leg book cache since every decision in this system needs both
// legs' quotes together.
package orderbook

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mselser95/binarybot/pkg/types"
)

// Manager tracks the latest OrderBookSnapshot per market, assembled from
// single-leg feed updates, and the tick (last-trade) stream.
type Manager struct {
	books   map[string]*types.OrderBookSnapshot // key: market_id
	tokenToMarket map[string]string             // token_id -> market_id
	tokenToOutcome map[string]types.Outcome
	mu      sync.RWMutex
	logger  *zap.Logger
	msgChan <-chan *types.FeedMessage

	snapshotChan chan types.OrderBookSnapshot
	tickChan     chan types.Tick

	ctx context.Context
	wg  sync.WaitGroup
}

// Config holds orderbook manager configuration.
type Config struct {
	Logger         *zap.Logger
	MessageChannel <-chan *types.FeedMessage
}

// New creates a new orderbook manager.
func New(cfg *Config) *Manager {
	return &Manager{
		books:          make(map[string]*types.OrderBookSnapshot),
		tokenToMarket:  make(map[string]string),
		tokenToOutcome: make(map[string]types.Outcome),
		logger:         cfg.Logger,
		msgChan:        cfg.MessageChannel,
		snapshotChan:   make(chan types.OrderBookSnapshot, 10000),
		tickChan:       make(chan types.Tick, 10000),
	}
}

// RegisterToken tells the manager which market and leg a token id
// belongs to, so inbound per-leg messages can be assembled into a
// two-leg snapshot.
func (m *Manager) RegisterToken(tokenID, marketID string, outcome types.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenToMarket[tokenID] = marketID
	m.tokenToOutcome[tokenID] = outcome
}

// Start begins processing inbound feed messages.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx = ctx
	m.logger.Info("orderbook-manager-starting")

	m.wg.Add(1)
	go m.processMessages()

	return nil
}

func (m *Manager) processMessages() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("orderbook-manager-stopping")
			return
		case msg, ok := <-m.msgChan:
			if !ok {
				m.logger.Info("message-channel-closed")
				return
			}
			m.handleMessage(msg)
		}
	}
}

func (m *Manager) handleMessage(msg *types.FeedMessage) {
	timer := prometheus.NewTimer(UpdateProcessingDuration)
	defer timer.ObserveDuration()

	UpdatesTotal.WithLabelValues(msg.EventType).Inc()

	switch msg.EventType {
	case "book":
		m.handleBookMessage(msg)
	case "last_trade_price":
		m.handleTradeMessage(msg)
	default:
		m.logger.Debug("orderbook-ignored-event-type", zap.String("event-type", msg.EventType))
	}
}

// handleBookMessage updates one leg of the market's snapshot from a
// full best-bid/ask book message, then republishes the full two-leg
// snapshot once both legs have been observed at least once.
func (m *Manager) handleBookMessage(msg *types.FeedMessage) {
	bidPrice, bidSize := bestLevel(msg.Bids)
	askPrice, askSize := bestLevel(msg.Asks)
	_ = bidSize
	_ = askSize

	m.mu.Lock()
	marketID := m.tokenToMarket[msg.TokenID]
	if marketID == "" {
		marketID = msg.MarketID
	}
	outcome, known := m.tokenToOutcome[msg.TokenID]
	if !known {
		m.mu.Unlock()
		m.logger.Debug("orderbook-unregistered-token", zap.String("token-id", msg.TokenID))
		return
	}

	snap, exists := m.books[marketID]
	if !exists {
		snap = &types.OrderBookSnapshot{MarketID: marketID}
		m.books[marketID] = snap
	}

	if outcome == types.Yes {
		snap.BidYes, snap.AskYes = bidPrice, askPrice
	} else {
		snap.BidNo, snap.AskNo = bidPrice, askPrice
	}
	snap.Timestamp = time.Now()
	if msg.Timestamp > 0 {
		snap.Timestamp = time.UnixMilli(msg.Timestamp)
	}

	SnapshotsTracked.Set(float64(len(m.books)))
	out := *snap
	m.mu.Unlock()

	m.logger.Debug("orderbook-snapshot-updated",
		zap.String("market-id", marketID),
		zap.String("outcome", string(outcome)),
		zap.Float64("bid-yes", out.BidYes), zap.Float64("ask-yes", out.AskYes),
		zap.Float64("bid-no", out.BidNo), zap.Float64("ask-no", out.AskNo))

	select {
	case m.snapshotChan <- out:
	default:
		m.logger.Warn("snapshot-channel-full-dropping-update", zap.String("market-id", marketID))
		UpdatesDroppedTotal.WithLabelValues("channel_full").Inc()
	}
}

func (m *Manager) handleTradeMessage(msg *types.FeedMessage) {
	price, err := strconv.ParseFloat(msg.Price, 64)
	if err != nil {
		return
	}
	size, err := strconv.ParseFloat(msg.Size, 64)
	if err != nil {
		return
	}

	m.mu.RLock()
	outcome, known := m.tokenToOutcome[msg.TokenID]
	marketID := m.tokenToMarket[msg.TokenID]
	m.mu.RUnlock()
	if !known {
		return
	}

	ts := time.Now()
	if msg.Timestamp > 0 {
		ts = time.UnixMilli(msg.Timestamp)
	}

	// Live ticks carry the market id in SessionID; the bot runtime
	// resolves it to the active recording session when persisting.
	tick := types.Tick{SessionID: marketID, Timestamp: ts, Outcome: outcome, Price: price, Size: size}

	select {
	case m.tickChan <- tick:
	default:
		m.logger.Warn("tick-channel-full-dropping-trade", zap.String("market-id", marketID))
		UpdatesDroppedTotal.WithLabelValues("channel_full").Inc()
	}
}

func bestLevel(levels []types.PriceLevel) (price, size float64) {
	if len(levels) == 0 {
		return 0, 0
	}
	return levels[0].BestPrice(), levels[0].BestSize()
}

// Snapshot returns the current two-leg snapshot for a market.
func (m *Manager) Snapshot(marketID string) (types.OrderBookSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, exists := m.books[marketID]
	if !exists {
		return types.OrderBookSnapshot{}, false
	}
	return *snap, true
}

// SnapshotChan streams every assembled two-leg snapshot update.
func (m *Manager) SnapshotChan() <-chan types.OrderBookSnapshot { return m.snapshotChan }

// TickChan streams every parsed trade print.
func (m *Manager) TickChan() <-chan types.Tick { return m.tickChan }

// Close waits for the processing goroutine to exit and closes output
// channels.
func (m *Manager) Close() error {
	m.logger.Info("closing-orderbook-manager")
	m.wg.Wait()
	close(m.snapshotChan)
	close(m.tickChan)
	m.logger.Info("orderbook-manager-closed")
	return nil
}
