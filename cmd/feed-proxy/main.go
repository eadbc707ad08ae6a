package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/essential-feed/internal/config"
	"github.com/Sternrassler/essential-feed/pkg/api"
	"github.com/Sternrassler/essential-feed/pkg/cache"
	"github.com/Sternrassler/essential-feed/pkg/client"
	"github.com/Sternrassler/essential-feed/pkg/logging"
	"github.com/Sternrassler/essential-feed/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		bootLogger := logging.NewLogger(logging.ComponentProxy)
		bootLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(cfg.LoggingConfig())
	logger := logging.NewLogger(logging.ComponentProxy)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.Store).Msg("Failed to open feed store")
	}
	defer store.Close()

	// With the Redis backend, Retry-After deadlines are shared across instances
	clientCfg := cfg.ClientConfig()
	clientCfg.Gate = ratelimit.NewTracker(store.Redis, logging.NewLogger(logging.ComponentRateLimit))

	httpClient, err := client.New(clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create feed client")
	}

	remote := api.NewRemoteLoader(cfg.ParsedFeedURL(), httpClient)
	local := cache.NewLocalLoader(store, time.Now)
	srv := newServer(remote, local, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Addr()).
			Str("feed_url", cfg.FeedURL).
			Str("store", cfg.Store).
			Str("user_agent", cfg.UserAgent).
			Msg("Starting feed proxy")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.RefreshInterval > 0 {
		r := newRefresher(srv.refreshing, cfg.RefreshInterval)
		g.Go(func() error {
			return r.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Feed proxy stopped with error")
		store.Close()
		os.Exit(1)
	}
	logger.Info().Msg("Feed proxy stopped")
}
