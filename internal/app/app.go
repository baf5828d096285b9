// Package app wires every ambient and domain component into one running
// process: config/logging/cache/storage, the bot registry, one Runtime
// per configured live bot, and the thin metrics/health/status HTTP
// surface. Grounded on the teacher's internal/app package for the
// setup/run/shutdown split; the orchestrated components themselves are
// generalized from a single wallet-driven arbitrage loop to the
// multi-bot TA50/arbitrage runtime built in internal/bot.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/bot"
	"github.com/mselser95/binarybot/internal/feed"
	"github.com/mselser95/binarybot/internal/markets"
	"github.com/mselser95/binarybot/internal/state"
	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/pkg/cache"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/healthprobe"
	"github.com/mselser95/binarybot/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server

	registry   *bot.Registry
	stateStore *state.Store
	tickCache  *markets.TickCache
	cache      cache.Cache
	repo       storage.Repository

	runtimes []*bot.Runtime
	feeds    []feed.MarketFeed

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options holds application options.
type Options struct {
	// BotManifestPath points at the JSON file listing live bots to run.
	// Defaults to "bots.json" in the working directory.
	BotManifestPath string
}

func (o *Options) manifestPath() string {
	if o == nil || o.BotManifestPath == "" {
		return "bots.json"
	}
	return o.BotManifestPath
}
