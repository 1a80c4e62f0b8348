package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfeltz/heatsync/internal/config"
	"github.com/mfeltz/heatsync/internal/syncer"
	"github.com/mfeltz/heatsync/internal/token"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync now",
	Long:  `Fetch recent activities, recompute daily levels, and replace the cached snapshot.`,
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	levels, err := orchestrator.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Synced %d active days over the last %d days.\n", len(levels), cfg.Sync.LookbackDays)

	return nil
}
