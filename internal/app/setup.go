package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/arbitrage"
	"github.com/mselser95/binarybot/internal/bot"
	"github.com/mselser95/binarybot/internal/feed"
	"github.com/mselser95/binarybot/internal/markets"
	"github.com/mselser95/binarybot/internal/risk"
	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/pkg/cache"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/healthprobe"
	"github.com/mselser95/binarybot/pkg/httpserver"
	"github.com/mselser95/binarybot/pkg/types"
)

const defaultInitialCapital = 10000.0

// New creates a new application instance: it wires the ambient stack
// (cache, storage, HTTP server) and constructs one bot.Runtime per
// manifest entry in opts.BotManifestPath.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	appCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}
	tickCache := markets.NewTickCache(appCache, cfg.TickCacheTTL)

	repo, err := storage.New(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	registry := bot.NewRegistry(logger)
	stateStore := state.New(logger)

	httpServer := setupHTTPServer(cfg, logger, healthChecker, registry)

	app := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		registry:      registry,
		stateStore:    stateStore,
		tickCache:     tickCache,
		cache:         appCache,
		repo:          repo,
		ctx:           ctx,
		cancel:        cancel,
	}

	entries, err := loadBotManifest(opts.manifestPath())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load bot manifest: %w", err)
	}

	for _, entry := range entries {
		rt, in, err := app.setupBot(entry)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("setup bot %s: %w", entry.ID, err)
		}
		registry.Add(in)
		app.runtimes = append(app.runtimes, rt)
	}

	return app, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupHTTPServer(cfg *config.Config, logger *zap.Logger, healthChecker *healthprobe.HealthChecker, registry *bot.Registry) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:           cfg.HTTPPort,
		Logger:         logger,
		HealthChecker:  healthChecker,
		StatusProvider: registry,
	})
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

// setupBot builds every per-bot collaborator a manifest entry needs: a
// dedicated MarketFeed subscription, strategy/arbitrage state, a cash
// circuit breaker, and the Runtime that drives them.
func (a *App) setupBot(entry BotManifestEntry) (*bot.Runtime, *bot.Instance, error) {
	a.tickCache.Set(entry.MarketID, markets.Metadata{TickSize: entry.TickSize, MinSize: entry.MinSize})

	params := config.ParseStrategyConfig(entry.StrategyConfig, a.logger)
	arbParams := config.ParseArbitrageConfig(entry.StrategyConfig)

	initialCapital := entry.InitialCapital
	if initialCapital <= 0 {
		initialCapital = defaultInitialCapital
	}

	strategyState := a.stateStore.GetOrCreate(entry.ID)
	in := bot.NewInstance(entry.toBotInstance(), initialCapital, strategyState, &arbitrage.BotState{}, params, arbParams)
	in.Bot.StartedAt = in.Bot.CreatedAt

	breaker, err := risk.New(&risk.Config{
		BotID:           entry.ID,
		CheckInterval:   a.cfg.StaleOrderScanEvery,
		TradeMultiplier: 3,
		MinAbsolute:     params.QMax * 0.01,
		HysteresisRatio: 1.5,
		Fetch:           func() float64 { return in.Book.Cash },
		Logger:          a.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create circuit breaker: %w", err)
	}
	in.Breaker = breaker
	breaker.Start(a.ctx)

	mf := feed.New(feed.Config{
		URL:                   a.cfg.FeedWSURL,
		DialTimeout:           a.cfg.WSDialTimeout,
		PongTimeout:           a.cfg.WSPongTimeout,
		PingInterval:          a.cfg.WSPingInterval,
		ReconnectInitialDelay: a.cfg.WSReconnectInitialDelay,
		ReconnectMaxDelay:     a.cfg.WSReconnectMaxDelay,
		ReconnectBackoffMult:  a.cfg.WSReconnectBackoffMult,
		MessageBufferSize:     a.cfg.WSMessageBufferSize,
		Logger:                a.logger,
	})
	if err := mf.Start(a.ctx); err != nil {
		return nil, nil, fmt.Errorf("start market feed: %w", err)
	}
	if err := mf.Subscribe(a.ctx, entry.MarketID, entry.YesTokenID, entry.NoTokenID); err != nil {
		return nil, nil, fmt.Errorf("subscribe market feed: %w", err)
	}
	a.feeds = append(a.feeds, mf)

	// PaperGateway is the OrderGateway's only concrete adapter: the
	// exchange wire protocol is out of scope (spec.md §1), so both live
	// and dry-run bots fill against it, simulating complete liquidity at
	// the requested price.
	gateway := feed.NewPaperGateway(a.logger, a.cfg.MetricBufferSize)

	if in.Bot.Mode == types.ModeLive {
		if err := bot.Reconcile(a.ctx, a.repo, in, a.logger); err != nil {
			return nil, nil, fmt.Errorf("reconcile positions: %w", err)
		}
	}

	rt := bot.NewRuntime(in, mf, gateway, a.tickCache, a.repo, a.cfg, a.logger)
	return rt, in, nil
}
