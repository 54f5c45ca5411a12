package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/businesslike/lessonplay/internal/catalog"
	"github.com/businesslike/lessonplay/internal/config"
	"github.com/businesslike/lessonplay/internal/database"
	"github.com/businesslike/lessonplay/internal/handler/health"
	"github.com/businesslike/lessonplay/internal/lesson"
	"github.com/businesslike/lessonplay/internal/progress"
	"github.com/businesslike/lessonplay/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Progress store ---
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	store := progress.NewStore(backend, cfg.StorePrefix)
	defer store.Close()

	// --- Courses ---
	loader, err := catalog.NewLoader(cfg.ContentDir, logger)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	cat := catalog.New(loader, store)

	// --- Sessions ---
	broker := server.NewBroker()
	sessions := server.NewRegistry(lesson.Options{
		Timing: lesson.Timing{
			RevealDelay:    cfg.RevealDelay,
			WrongCooldown:  cfg.WrongCooldown,
			CompleteDelay:  cfg.CompleteDelay,
			MaterialsDelay: cfg.MaterialsDelay,
			NotifyDismiss:  cfg.NotifyDismiss,
		},
		Progress: store,
		Sink:     broker,
	}, cfg.SessionTTL, logger)
	defer sessions.Close()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Catalog:  cat,
		Progress: store,
		Sessions: sessions,
		Broker:   broker,
		Checks:   map[string]health.Checker{cfg.StoreBackend: health.CheckFunc(store.Ping)},
		SPADir:   cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	if cfg.SessionTTL > 0 {
		g.Go(func() error {
			return sessions.Run(gctx, sweepInterval(cfg.SessionTTL))
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (progress.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		b, err := progress.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("connected to redis")
		return b, nil
	case config.BackendMemory:
		logger.Warn("using in-memory progress store; progress is lost on restart")
		return progress.NewMemoryBackend(), nil
	default:
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("connecting to sqlite: %w", err)
		}
		b, err := progress.NewSQLiteBackend(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("preparing sqlite store: %w", err)
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath)
		return b, nil
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), time.Minute)
}
