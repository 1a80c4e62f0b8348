package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/mfeltz/heatsync/internal/api"
	"github.com/mfeltz/heatsync/internal/config"
	"github.com/mfeltz/heatsync/internal/metrics"
	"github.com/mfeltz/heatsync/internal/syncer"
	"github.com/mfeltz/heatsync/internal/token"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the heatsync daemon",
	Long:  `Start the heatsync daemon with the periodic sync scheduler, widget API, and metrics endpoints.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting heatsync")

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	logger.Info().Str("type", cfg.Storage.Type).Msg("Storage initialized")

	client := newProviderClient(cfg.Provider)

	tokenManager := token.NewManager(
		client,
		store.Credentials(),
		token.Config{
			ExpiryLeeway: parseDuration(cfg.Token.ExpiryLeeway, token.DefaultExpiryLeeway),
		},
		logger,
	)

	orchestrator := syncer.NewOrchestrator(
		tokenManager,
		client,
		store.Snapshots(),
		syncer.Config{LookbackDays: cfg.Sync.LookbackDays},
		logger,
	)

	scheduler := syncer.NewScheduler(
		orchestrator,
		parseDuration(cfg.Sync.Interval, syncer.DefaultInterval),
		logger,
	)
	scheduler.Start()

	// Bring the snapshot up to date right away rather than waiting out
	// the first interval.
	scheduler.RunNow()

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.NewServer(
			fmt.Sprintf("%s:%d", cfg.API.BindAddress, cfg.API.Port),
			store.Snapshots(),
			api.Config{
				DefaultWeeks:  cfg.Grid.Weeks,
				GridCacheSize: cfg.API.GridCacheSize,
			},
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize API server: %w", err)
		}
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(
			fmt.Sprintf("%s:%d", cfg.Metrics.BindAddress, cfg.Metrics.Port),
			logger,
		)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// Notify systemd that we're ready
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	}

	// Wait for signals (shutdown or sync-now)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan

		if sig == syscall.SIGHUP {
			logger.Info().Msg("SIGHUP received, triggering sync")
			scheduler.RunNow()
			continue
		}

		logger.Info().Msg("Shutdown signal received, gracefully stopping...")
		break
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	scheduler.Stop()

	if apiServer != nil {
		if err := apiServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping API server")
		}
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	logger.Info().Msg("heatsync stopped")

	return nil
}
