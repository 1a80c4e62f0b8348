package main

import (
	"fmt"

	"github.com/mfeltz/heatsync/internal/config"
	"github.com/mfeltz/heatsync/internal/token"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Unlink the fitness account",
	Long:  `Clear stored OAuth credentials and the cached heatmap snapshot.`,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
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

	manager := token.NewManager(newProviderClient(cfg.Provider), store.Credentials(), token.Config{}, logger)

	if err := manager.Logout(cmd.Context()); err != nil {
		return err
	}

	if err := store.Snapshots().Delete(cmd.Context()); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	fmt.Println("Logged out.")

	return nil
}
