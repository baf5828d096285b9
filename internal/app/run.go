package app

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/bot"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("log-level", a.cfg.LogLevel),
		zap.Int("bots", len(a.runtimes)))

	a.startComponents()

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("feed-ws-url", a.cfg.FeedWSURL))

	return a.waitForShutdown()
}

func (a *App) startComponents() {
	a.wg.Add(1)
	go a.runHTTPServer()

	for _, rt := range a.runtimes {
		a.wg.Add(1)
		go a.runBot(rt)
	}
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runBot(rt *bot.Runtime) {
	defer a.wg.Done()
	rt.Run(a.ctx)
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
