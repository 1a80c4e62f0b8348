package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/mfeltz/heatsync/internal/strava"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	exchangeCalls int
	refreshCalls  int
	response      *strava.TokenResponse
	err           error
}

func (f *fakeSource) ExchangeToken(ctx context.Context, code string) (*strava.TokenResponse, error) {
	f.exchangeCalls++
	return f.response, f.err
}

func (f *fakeSource) RefreshToken(ctx context.Context, refreshToken string) (*strava.TokenResponse, error) {
	f.refreshCalls++
	return f.response, f.err
}

type memCredentialStore struct {
	creds *storage.Credentials
}

func (s *memCredentialStore) Get(ctx context.Context) (*storage.Credentials, error) {
	if s.creds == nil {
		return nil, storage.ErrNotFound
	}
	c := *s.creds
	return &c, nil
}

func (s *memCredentialStore) Put(ctx context.Context, creds storage.Credentials) error {
	s.creds = &creds
	return nil
}

func (s *memCredentialStore) Delete(ctx context.Context) error {
	s.creds = nil
	return nil
}

func newTestManager(source TokenSource, store storage.CredentialStore, now time.Time) *Manager {
	m := NewManager(source, store, Config{}, zerolog.Nop())
	return m.WithClock(&TestClock{CurrentTime: now})
}

func TestEnsureValidTokenNotLoggedIn(t *testing.T) {
	source := &fakeSource{}
	manager := newTestManager(source, &memCredentialStore{}, time.Now())

	_, err := manager.EnsureValidToken(context.Background())
	require.ErrorIs(t, err, ErrNotLoggedIn)
	require.Zero(t, source.refreshCalls)
	require.Zero(t, source.exchangeCalls)
}

func TestEnsureValidTokenCached(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := &memCredentialStore{creds: &storage.Credentials{
		AccessToken:  "cached",
		RefreshToken: "rt",
		ExpiresAt:    now.Unix() + 3600,
	}}
	source := &fakeSource{}
	manager := newTestManager(source, store, now)

	got, err := manager.EnsureValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "cached", got)
	require.Zero(t, source.refreshCalls, "no network call expected for an unexpired token")
}

func TestEnsureValidTokenRefreshesExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := &memCredentialStore{creds: &storage.Credentials{
		AccessToken:  "stale",
		RefreshToken: "rt",
		ExpiresAt:    now.Unix() - 1,
	}}
	source := &fakeSource{response: &strava.TokenResponse{
		AccessToken:  "fresh",
		RefreshToken: "rt2",
		ExpiresAt:    now.Unix() + 21600,
	}}
	manager := newTestManager(source, store, now)

	got, err := manager.EnsureValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh", got)
	require.Equal(t, 1, source.refreshCalls)

	persisted, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh", persisted.AccessToken)
	require.Equal(t, "rt2", persisted.RefreshToken)
	require.Equal(t, now.Unix()+21600, persisted.ExpiresAt)
}

func TestEnsureValidTokenLeeway(t *testing.T) {
	now := time.Unix(1700000000, 0)
	// Expires in 30s: inside the 60s leeway, so a refresh is due.
	store := &memCredentialStore{creds: &storage.Credentials{
		AccessToken:  "stale",
		RefreshToken: "rt",
		ExpiresAt:    now.Unix() + 30,
	}}
	source := &fakeSource{response: &strava.TokenResponse{
		AccessToken:  "fresh",
		RefreshToken: "rt2",
		ExpiresAt:    now.Unix() + 21600,
	}}
	manager := newTestManager(source, store, now)

	got, err := manager.EnsureValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh", got)
	require.Equal(t, 1, source.refreshCalls)
}

func TestRefreshFailureKeepsCredentials(t *testing.T) {
	now := time.Unix(1700000000, 0)
	before := storage.Credentials{
		AccessToken:  "stale",
		RefreshToken: "rt",
		ExpiresAt:    now.Unix() - 1,
	}
	store := &memCredentialStore{creds: &before}
	source := &fakeSource{err: errors.New("upstream http 503")}
	manager := newTestManager(source, store, now)

	_, err := manager.EnsureValidToken(context.Background())
	require.ErrorIs(t, err, ErrRefreshFailed)

	after, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, before, *after, "refresh failure must not touch stored credentials")
}

func TestExchangeCodePersistsCredentials(t *testing.T) {
	store := &memCredentialStore{}
	source := &fakeSource{response: &strava.TokenResponse{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    1700003600,
	}}
	manager := newTestManager(source, store, time.Unix(1700000000, 0))

	creds, err := manager.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, 1, source.exchangeCalls)
	require.True(t, creds.Valid())

	persisted, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, *creds, *persisted)
}

func TestExchangeCodeFailure(t *testing.T) {
	store := &memCredentialStore{}
	source := &fakeSource{err: errors.New("upstream http 400")}
	manager := newTestManager(source, store, time.Unix(1700000000, 0))

	_, err := manager.ExchangeCode(context.Background(), "bad-code")
	require.ErrorIs(t, err, ErrAuthExchangeFailed)

	_, err = store.Get(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExchangeCodeIncompletePair(t *testing.T) {
	store := &memCredentialStore{}
	source := &fakeSource{response: &strava.TokenResponse{AccessToken: "at-only"}}
	manager := newTestManager(source, store, time.Unix(1700000000, 0))

	_, err := manager.ExchangeCode(context.Background(), "the-code")
	require.ErrorIs(t, err, ErrAuthExchangeFailed)

	_, err = store.Get(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound, "incomplete pair must never be persisted")
}

func TestLogoutIdempotent(t *testing.T) {
	store := &memCredentialStore{creds: &storage.Credentials{
		AccessToken: "at", RefreshToken: "rt", ExpiresAt: 1,
	}}
	manager := newTestManager(&fakeSource{}, store, time.Now())

	require.NoError(t, manager.Logout(context.Background()))
	require.NoError(t, manager.Logout(context.Background()))
	require.False(t, manager.LoggedIn(context.Background()))
}
