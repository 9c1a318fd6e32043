package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/eddyflux/internal/controllers/restserver"
	"github.com/chrissnell/eddyflux/internal/storage"
	"github.com/chrissnell/eddyflux/internal/storage/sqlite"
	"github.com/chrissnell/eddyflux/internal/storage/timescaledb"
	"github.com/chrissnell/eddyflux/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	store, err := OpenStore(ctx, cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	rest, err := restserver.NewController(ctx, &wg, cfg, store, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	a.logger.Infof("application started with %d site(s)", len(cfg.Sites))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	cancel()

	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}

// OpenStore opens the configured result store, falling back to an
// in-memory SQLite database when none is configured.
func OpenStore(ctx context.Context, sc config.StorageData, logger *zap.SugaredLogger) (storage.ResultStore, error) {
	switch {
	case sc.TimescaleDB != nil && sc.TimescaleDB.ConnectionString != "":
		store, err := timescaledb.New(ctx, sc.TimescaleDB.ConnectionString, logger)
		if err != nil {
			return nil, fmt.Errorf("timescaledb storage: %w", err)
		}
		return store, nil
	case sc.SQLite != nil:
		store, err := sqlite.New(ctx, sc.SQLite.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite storage: %w", err)
		}
		return store, nil
	default:
		logger.Warn("no storage configured; results are kept in memory and lost on exit")
		return sqlite.New(ctx, sqlite.MemoryPath, logger)
	}
}
