package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal every bot Runtime and risk.Breaker.
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.shutdownHTTPServer(shutdownCtx); err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	if err := a.shutdownFeeds(); err != nil {
		a.logger.Error("market-feed-close-error", zap.Error(err))
	}

	if err := a.shutdownStorage(); err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	a.shutdownCache()

	// Wait for the HTTP server goroutine and every bot Runtime to return.
	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}

func (a *App) shutdownHTTPServer(ctx context.Context) error {
	return a.httpServer.Shutdown(ctx)
}

func (a *App) shutdownFeeds() error {
	var firstErr error
	for _, f := range a.feeds {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) shutdownStorage() error {
	return a.repo.Close()
}

func (a *App) shutdownCache() {
	if a.cache != nil {
		a.cache.Close()
	}
}
