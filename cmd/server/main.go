package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pauljones0/rental-board/internal/api"
	"github.com/pauljones0/rental-board/internal/config"
	"github.com/pauljones0/rental-board/internal/dispatcher"
	"github.com/pauljones0/rental-board/internal/feed"
	"github.com/pauljones0/rental-board/internal/manager"
	"github.com/pauljones0/rental-board/internal/notifier"
	"github.com/pauljones0/rental-board/internal/storage"
)

// transitionStore is the transition log plus its lifecycle.
type transitionStore interface {
	manager.TransitionLog
	Close() error
}

func main() {
	slog.Info("Starting rental board server...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, err := openTransitionStore(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing transition log", "backend", cfg.TransitionLogBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	logger := slog.Default()
	cache := feed.NewCache(feed.New(cfg.FeedURL, cfg.FeedTimeout, cfg.FeedMaxRetries, logger), logger)
	disp := dispatcher.New(cfg.ActionPathMarker, cfg.ActionTimeout, cfg.ActionRateLimit, logger)

	var n manager.TransitionNotifier
	if cfg.DiscordWebhookURL != "" {
		n = notifier.New(cfg.DiscordWebhookURL)
	}
	m := manager.New(cache, disp, store, n, cfg, logger)

	// A failed first read is not fatal: the snapshot carries the error and the
	// background refresher keeps trying.
	if _, err := cache.Refresh(ctx); err != nil {
		slog.Warn("Initial feed load failed", "error", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.New(cache, m, logger).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ActionTimeout + cfg.FeedTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cache.Run(gctx, cfg.FeedRefreshInterval)
	})
	g.Go(func() error {
		slog.Info("Listening on port", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

func openTransitionStore(ctx context.Context, cfg *config.Config) (transitionStore, error) {
	switch cfg.TransitionLogBackend {
	case config.BackendFirestore:
		return storage.New(ctx, cfg.ProjectID)
	case config.BackendPostgres:
		return storage.NewPostgres(ctx, cfg.PostgresDSN)
	default:
		slog.Info("TRANSITION_LOG_BACKEND is none, transition history is kept in memory")
		return storage.NewMemory(), nil
	}
}
