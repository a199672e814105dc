package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"toolmux/internal/config"
	"toolmux/pkg/logging"
)

// Run starts the engine, the MCP front end and the configuration watcher,
// then blocks until the context is cancelled or a termination signal
// arrives. Shutdown is graceful: the front end stops accepting calls, the
// engine closes its clients, pending traces flush.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start aggregation engine: %w", err)
	}
	defer a.engine.Stop()

	if err := a.server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}

	watcher, err := config.NewWatcher(a.configPath, func(cfg config.Config) {
		// Reload runs a discovery cycle; keep the watcher goroutine free.
		go func() {
			if err := a.engine.Reload(ctx, cfg); err != nil {
				logging.Error("App", err, "Failed to apply reloaded configuration")
			}
		}()
	})
	if err != nil {
		logging.Warn("App", "Config watching disabled: %v", err)
	} else {
		watcher.Start(ctx)
	}

	logging.Info("App", "toolmux is running, press Ctrl+C to stop")
	<-ctx.Done()
	logging.Info("App", "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		logging.Warn("App", "Error stopping MCP server: %v", err)
	}
	a.engine.Stop()

	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(shutdownCtx); err != nil {
			logging.Warn("App", "Error flushing traces: %v", err)
		}
	}

	return nil
}
