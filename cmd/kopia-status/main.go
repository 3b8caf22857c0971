package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spacefrags/kopia-status/internal/api"
	"github.com/spacefrags/kopia-status/internal/config"
	"github.com/spacefrags/kopia-status/internal/logging"
	"github.com/spacefrags/kopia-status/internal/model"
	"github.com/spacefrags/kopia-status/internal/state"
)

func main() {
	configFlag := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	bus := state.NewBus(logger)
	registry := state.NewRegistry(logger, bus, cfg.StateFile)

	if err := registry.Load(); err != nil {
		logger.Error().Err(err).Msg("could not restore state, starting empty")
	}

	// Config-file instances merge with restored ones; an already-restored
	// webhook ID wins.
	for _, ic := range cfg.Instances {
		_, err := registry.Register(model.Instance{
			WebhookID:    ic.WebhookID,
			Name:         ic.Name,
			HistoryLimit: ic.HistoryLimit,
		})
		if err != nil && !errors.Is(err, state.ErrDuplicateWebhook) {
			logger.Fatal().Err(err).Str("webhook_id", ic.WebhookID).Msg("failed to register instance")
		}
	}

	srv := api.NewServer(logger, registry, bus)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting webhook status server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-ctx.Done():
			return ctx.Err()
		}

		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	registry.Save()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
