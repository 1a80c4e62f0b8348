package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/mfeltz/heatsync/internal/config"
	"github.com/mfeltz/heatsync/internal/heatmap"
	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/spf13/cobra"
)

var gridWeeks int

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Render the cached heatmap in the terminal",
	RunE:  runGrid,
}

func init() {
	gridCmd.Flags().IntVar(&gridWeeks, "weeks", 0, "Weeks to display (defaults to grid.weeks from config)")
	rootCmd.AddCommand(gridCmd)
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	snap, err := store.Snapshots().Get(cmd.Context())
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Println("No snapshot yet. Run 'heatsync sync' first.")
		return nil
	}
	if err != nil {
		return err
	}

	weeks := cfg.Grid.Weeks
	if gridWeeks > 0 {
		weeks = gridWeeks
	}

	fmt.Print(heatmap.Render(snap.Levels, weeks, time.Now()))
	fmt.Printf("\nLast synced %s ago.\n", time.Since(time.Unix(snap.LastSync, 0)).Round(time.Minute))

	return nil
}
