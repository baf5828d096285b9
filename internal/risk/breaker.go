// Package risk implements a per-bot cash circuit breaker: a safety gate
// sitting in front of order submission that disables a bot once its
// ledger cash balance falls below a threshold computed from its own
// recent trade sizes, and only re-enables it once cash recovers past a
// higher, hysteresis-padded threshold. Grounded on the teacher's
// internal/circuitbreaker.BalanceCircuitBreaker, which watches an
// on-chain wallet's USDC balance; adapted to watch internal/ledger's
// in-process cash balance instead, since this system's bots hold a
// simulated/broker cash balance rather than a wallet (spec.md's
// Non-goals exclude chain settlement entirely, so the go-ethereum
// balance fetch drops out along with it — see DESIGN.md).
package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// CashFetcher returns a bot's current available cash. Implemented by
// closing over an *internal/ledger.Book's Cash field (or any other cash
// source a test wants to substitute).
type CashFetcher func() float64

// Breaker monitors one bot's cash balance and gates trade submission.
// Safe for concurrent use: IsEnabled is lock-free, RecordTrade/CheckCash
// take a mutex.
type Breaker struct {
	botID   string
	enabled atomic.Bool

	checkInterval   time.Duration
	fetch           CashFetcher
	logger          *zap.Logger
	tradeMultiplier float64
	minAbsolute     float64
	hysteresisRatio float64

	mu               sync.RWMutex
	lastCash         float64
	lastCheck        time.Time
	recentTrades     []float64
	disableThreshold float64
	enableThreshold  float64
}

// Config configures a Breaker.
type Config struct {
	BotID           string
	CheckInterval   time.Duration
	TradeMultiplier float64 // disable threshold = avg trade cost * TradeMultiplier
	MinAbsolute     float64 // disable threshold floor
	HysteresisRatio float64 // enable threshold = disable threshold * HysteresisRatio
	Fetch           CashFetcher
	Logger          *zap.Logger
}

// Status is a snapshot of a Breaker's state for debugging/HTTP endpoints.
type Status struct {
	Enabled          bool
	LastCash         float64
	LastCheck        time.Time
	DisableThreshold float64
	EnableThreshold  float64
	AvgTradeSize     float64
	RecentTradeCount int
}

// New validates cfg and constructs a Breaker, starting enabled.
func New(cfg *Config) (*Breaker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("cash fetcher cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("check interval must be positive")
	}
	if cfg.TradeMultiplier <= 0 {
		return nil, fmt.Errorf("trade multiplier must be positive")
	}
	if cfg.MinAbsolute <= 0 {
		return nil, fmt.Errorf("min absolute must be positive")
	}
	if cfg.HysteresisRatio < 1.0 {
		return nil, fmt.Errorf("hysteresis ratio must be >= 1.0")
	}

	b := &Breaker{
		botID:            cfg.BotID,
		checkInterval:    cfg.CheckInterval,
		fetch:            cfg.Fetch,
		logger:           cfg.Logger,
		tradeMultiplier:  cfg.TradeMultiplier,
		minAbsolute:      cfg.MinAbsolute,
		hysteresisRatio:  cfg.HysteresisRatio,
		recentTrades:     make([]float64, 0, 20),
		disableThreshold: cfg.MinAbsolute,
		enableThreshold:  cfg.MinAbsolute * cfg.HysteresisRatio,
	}
	b.enabled.Store(true)

	CircuitBreakerEnabled.WithLabelValues(b.botID).Set(1)
	CircuitBreakerDisableThreshold.WithLabelValues(b.botID).Set(b.disableThreshold)
	CircuitBreakerEnableThreshold.WithLabelValues(b.botID).Set(b.enableThreshold)
	CircuitBreakerAvgTradeSize.WithLabelValues(b.botID).Set(0)

	return b, nil
}

// IsEnabled reports whether the bot may submit trades. Lock-free, safe
// on the hot decision path.
func (b *Breaker) IsEnabled() bool {
	return b.enabled.Load()
}

// RecordTrade folds a filled trade's cost into the rolling window and
// recalculates both thresholds. Call after every fill.
func (b *Breaker) RecordTrade(tradeCost float64) {
	if tradeCost <= 0 {
		b.logger.Warn("invalid-trade-cost", zap.String("bot_id", b.botID), zap.Float64("cost", tradeCost))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.recentTrades = append(b.recentTrades, tradeCost)
	if len(b.recentTrades) > 20 {
		b.recentTrades = b.recentTrades[1:]
	}

	sum := 0.0
	for _, size := range b.recentTrades {
		sum += size
	}
	avg := sum / float64(len(b.recentTrades))

	b.disableThreshold = math.Max(avg*b.tradeMultiplier, b.minAbsolute)
	b.enableThreshold = b.disableThreshold * b.hysteresisRatio

	CircuitBreakerAvgTradeSize.WithLabelValues(b.botID).Set(avg)
	CircuitBreakerDisableThreshold.WithLabelValues(b.botID).Set(b.disableThreshold)
	CircuitBreakerEnableThreshold.WithLabelValues(b.botID).Set(b.enableThreshold)
}

// CheckCash fetches the current cash balance and applies the
// enable/disable hysteresis.
func (b *Breaker) CheckCash() {
	cash := b.fetch()

	b.mu.RLock()
	disableThreshold := b.disableThreshold
	enableThreshold := b.enableThreshold
	b.mu.RUnlock()

	currentlyEnabled := b.enabled.Load()

	b.mu.Lock()
	b.lastCash = cash
	b.lastCheck = time.Now()
	b.mu.Unlock()

	CircuitBreakerCash.WithLabelValues(b.botID).Set(cash)

	shouldDisable := currentlyEnabled && cash < disableThreshold
	shouldEnable := !currentlyEnabled && cash >= enableThreshold

	switch {
	case shouldDisable:
		b.enabled.Store(false)
		CircuitBreakerEnabled.WithLabelValues(b.botID).Set(0)
		CircuitBreakerStateChanges.WithLabelValues(b.botID).Inc()
		b.logger.Warn("cash-breaker-disabled",
			zap.String("bot_id", b.botID),
			zap.Float64("cash", cash),
			zap.Float64("disable_threshold", disableThreshold))
	case shouldEnable:
		b.enabled.Store(true)
		CircuitBreakerEnabled.WithLabelValues(b.botID).Set(1)
		CircuitBreakerStateChanges.WithLabelValues(b.botID).Inc()
		b.logger.Info("cash-breaker-enabled",
			zap.String("bot_id", b.botID),
			zap.Float64("cash", cash),
			zap.Float64("enable_threshold", enableThreshold))
	default:
		b.logger.Debug("cash-checked",
			zap.String("bot_id", b.botID),
			zap.Float64("cash", cash),
			zap.Bool("enabled", currentlyEnabled))
	}
}

// Start checks cash immediately, then launches a background goroutine
// that re-checks every CheckInterval until ctx is cancelled.
func (b *Breaker) Start(ctx context.Context) {
	b.logger.Info("cash-breaker-started",
		zap.String("bot_id", b.botID),
		zap.Duration("check_interval", b.checkInterval))

	b.CheckCash()
	go b.monitorLoop(ctx)
}

func (b *Breaker) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(b.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("cash-breaker-stopped", zap.String("bot_id", b.botID))
			return
		case <-ticker.C:
			b.CheckCash()
		}
	}
}

// GetStatus returns a snapshot of the breaker's current state.
func (b *Breaker) GetStatus() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sum := 0.0
	for _, size := range b.recentTrades {
		sum += size
	}
	avg := 0.0
	if len(b.recentTrades) > 0 {
		avg = sum / float64(len(b.recentTrades))
	}

	return Status{
		Enabled:          b.enabled.Load(),
		LastCash:         b.lastCash,
		LastCheck:        b.lastCheck,
		DisableThreshold: b.disableThreshold,
		EnableThreshold:  b.enableThreshold,
		AvgTradeSize:     avg,
		RecentTradeCount: len(b.recentTrades),
	}
}
