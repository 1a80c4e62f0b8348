package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfeltz/heatsync/internal/auth"
	"github.com/mfeltz/heatsync/internal/config"
	"github.com/mfeltz/heatsync/internal/strava"
	"github.com/mfeltz/heatsync/internal/token"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var loginCode string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Link a fitness account",
	Long: `Link a fitness account via the OAuth authorization-code grant.

Prints the provider authorize URL, captures the redirect on a local callback
server, and exchanges the code for tokens. If you already have a code, pass
it with --code to skip the callback step.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Authorization code (skips the browser flow)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
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

	manager := token.NewManager(
		client,
		store.Credentials(),
		token.Config{
			ExpiryLeeway: parseDuration(cfg.Token.ExpiryLeeway, token.DefaultExpiryLeeway),
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := loginCode
	if code == "" {
		code, err = captureCode(ctx, cfg, client, logger)
		if err != nil {
			return err
		}
	}

	creds, err := manager.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	fmt.Printf("Account linked, token valid until %d. Run 'heatsync sync' to fetch activity.\n", creds.ExpiresAt)

	return nil
}

// captureCode runs the browser half of the grant: it serves the local
// callback endpoint, prints the authorize URL, and waits for the redirect.
func captureCode(ctx context.Context, cfg *config.Config, client *strava.Client, logger zerolog.Logger) (string, error) {
	flow := auth.NewFlow()

	addr := fmt.Sprintf("%s:%d", cfg.Auth.BindAddress, cfg.Auth.CallbackPort)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	callback := auth.NewCallbackServer(addr, flow, logger)
	if err := callback.Start(); err != nil {
		return "", fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() { _ = callback.Stop() }()

	pending := flow.Begin()
	defer flow.Clear(pending)

	fmt.Println("Open this URL in your browser to authorize:")
	fmt.Println()
	fmt.Println("  " + client.AuthorizeURL(redirectURI))
	fmt.Println()
	fmt.Println("Waiting for the provider to redirect back...")

	code, err := pending.Wait(ctx)
	if err != nil {
		return "", err
	}

	return code, nil
}
