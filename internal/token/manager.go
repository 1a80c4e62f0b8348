package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfeltz/heatsync/internal/metrics"
	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/mfeltz/heatsync/internal/strava"
	"github.com/rs/zerolog"
)

// DefaultExpiryLeeway treats a token as expired this long before its
// provider-reported expiry to absorb clock skew.
const DefaultExpiryLeeway = 60 * time.Second

var (
	// ErrNotLoggedIn indicates no stored credentials; the user must
	// re-authenticate.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrAuthExchangeFailed indicates the authorization-code grant was
	// rejected or never completed.
	ErrAuthExchangeFailed = errors.New("authorization code exchange failed")

	// ErrRefreshFailed indicates the refresh-token grant failed. Stored
	// credentials are left intact: a transient outage must not force
	// re-login.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// TokenSource performs the provider's two token grants.
type TokenSource interface {
	ExchangeToken(ctx context.Context, code string) (*strava.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*strava.TokenResponse, error)
}

// Config holds token manager configuration
type Config struct {
	ExpiryLeeway time.Duration
}

// Manager owns the OAuth token lifecycle: code exchange, expiry-driven
// refresh, and logout. All credential writes go through the store as a
// single record.
type Manager struct {
	source TokenSource
	creds  storage.CredentialStore
	leeway time.Duration
	clock  Clock
	logger zerolog.Logger
}

// NewManager creates a token manager.
func NewManager(source TokenSource, creds storage.CredentialStore, cfg Config, logger zerolog.Logger) *Manager {
	if cfg.ExpiryLeeway == 0 {
		cfg.ExpiryLeeway = DefaultExpiryLeeway
	}
	return &Manager{
		source: source,
		creds:  creds,
		leeway: cfg.ExpiryLeeway,
		clock:  RealClock{},
		logger: logger.With().Str("component", "token-manager").Logger(),
	}
}

// WithClock replaces the manager's clock. Tests only.
func (m *Manager) WithClock(clock Clock) *Manager {
	m.clock = clock
	return m
}

// LoggedIn reports whether a complete credential record is stored.
func (m *Manager) LoggedIn(ctx context.Context) bool {
	creds, err := m.creds.Get(ctx)
	return err == nil && creds.Valid()
}

// ExchangeCode performs the authorization-code grant and persists the
// resulting credentials atomically.
func (m *Manager) ExchangeCode(ctx context.Context, code string) (*storage.Credentials, error) {
	resp, err := m.source.ExchangeToken(ctx, code)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("token").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAuthExchangeFailed, err)
	}

	creds := storage.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	}
	if !creds.Valid() {
		return nil, fmt.Errorf("%w: provider returned incomplete token pair", ErrAuthExchangeFailed)
	}

	if err := m.creds.Put(ctx, creds); err != nil {
		return nil, fmt.Errorf("persist credentials: %w", err)
	}

	m.logger.Info().Int64("expires_at", creds.ExpiresAt).Msg("Authorization code exchanged")

	return &creds, nil
}

// EnsureValidToken returns a bearer token that is valid for at least the
// configured leeway, refreshing if necessary. A refresh failure leaves the
// stored credentials untouched.
func (m *Manager) EnsureValidToken(ctx context.Context) (string, error) {
	creds, err := m.creds.Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	if !creds.Valid() {
		return "", ErrNotLoggedIn
	}

	now := m.clock.Now().Unix()
	if creds.ExpiresAt-int64(m.leeway.Seconds()) > now {
		return creds.AccessToken, nil
	}

	resp, err := m.source.RefreshToken(ctx, creds.RefreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		metrics.UpstreamErrorsTotal.WithLabelValues("token").Inc()
		m.logger.Warn().Err(err).Msg("Token refresh failed, keeping stored credentials")
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	refreshed := storage.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	}
	if !refreshed.Valid() {
		return "", fmt.Errorf("%w: provider returned incomplete token pair", ErrRefreshFailed)
	}

	if err := m.creds.Put(ctx, refreshed); err != nil {
		return "", fmt.Errorf("persist refreshed credentials: %w", err)
	}

	m.logger.Info().Int64("expires_at", refreshed.ExpiresAt).Msg("Access token refreshed")

	return refreshed.AccessToken, nil
}

// Logout clears stored credentials unconditionally. Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.creds.Delete(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	m.logger.Info().Msg("Logged out")
	return nil
}
