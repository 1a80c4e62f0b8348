package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mfeltz/heatsync/internal/heatmap"
	"github.com/mfeltz/heatsync/internal/metrics"
	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/mfeltz/heatsync/internal/strava"
	"github.com/mfeltz/heatsync/internal/token"
	"github.com/rs/zerolog"
)

// DefaultLookbackDays is the rolling activity window re-derived on every
// sync. It is independent of the display window's week count.
const DefaultLookbackDays = 91

// ActivityLister fetches recent activities from the provider.
type ActivityLister interface {
	ListActivities(ctx context.Context, accessToken string, afterEpoch int64) ([]strava.Activity, error)
}

// TokenProvider supplies a valid bearer token.
type TokenProvider interface {
	LoggedIn(ctx context.Context) bool
	EnsureValidToken(ctx context.Context) (string, error)
}

// Config holds orchestrator configuration
type Config struct {
	LookbackDays int
}

// Orchestrator is the top-level sync use case: token, fetch, aggregate,
// persist. It performs no retries of its own; a failed sync is reported to
// the caller, whose scheduler decides when to try again.
type Orchestrator struct {
	tokens    TokenProvider
	upstream  ActivityLister
	snapshots storage.SnapshotStore
	lookback  int
	clock     token.Clock
	logger    zerolog.Logger

	// mu serializes syncs; interleaved partial snapshot writes must not
	// happen.
	mu sync.Mutex
}

// NewOrchestrator creates a sync orchestrator.
func NewOrchestrator(tokens TokenProvider, upstream ActivityLister, snapshots storage.SnapshotStore, cfg Config, logger zerolog.Logger) *Orchestrator {
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	return &Orchestrator{
		tokens:    tokens,
		upstream:  upstream,
		snapshots: snapshots,
		lookback:  cfg.LookbackDays,
		clock:     token.RealClock{},
		logger:    logger.With().Str("component", "sync").Logger(),
	}
}

// WithClock replaces the orchestrator's clock. Tests only.
func (o *Orchestrator) WithClock(clock token.Clock) *Orchestrator {
	o.clock = clock
	return o
}

// LoggedIn reports whether a sync could currently authenticate.
func (o *Orchestrator) LoggedIn(ctx context.Context) bool {
	return o.tokens.LoggedIn(ctx)
}

// Sync runs one full sync and returns the fresh per-day levels. The stored
// snapshot is replaced wholesale: a day absent from the new window carries
// no level forward, whatever a previous sync recorded.
func (o *Orchestrator) Sync(ctx context.Context) (map[string]int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	started := o.clock.Now()

	levels, err := o.sync(ctx)
	metrics.SyncDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.SyncsTotal.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}

	metrics.SyncsTotal.WithLabelValues("success").Inc()
	metrics.DaysTracked.Set(float64(len(levels)))

	return levels, nil
}

func (o *Orchestrator) sync(ctx context.Context) (map[string]int, error) {
	if !o.tokens.LoggedIn(ctx) {
		return nil, token.ErrNotLoggedIn
	}

	accessToken, err := o.tokens.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}

	after := o.windowStart()

	activities, err := o.upstream.ListActivities(ctx, accessToken, after)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("activities").Inc()
		return nil, err
	}
	metrics.ActivitiesFetched.Set(float64(len(activities)))

	levels := heatmap.Aggregate(activities)

	snap := storage.SyncSnapshot{
		Levels:   levels,
		LastSync: o.clock.Now().Unix(),
	}
	if err := o.snapshots.Replace(ctx, snap); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	o.logger.Info().
		Int("activities", len(activities)).
		Int("days", len(levels)).
		Int64("after", after).
		Msg("Sync complete")

	return levels, nil
}

// windowStart returns the start of day lookback days ago, epoch seconds.
func (o *Orchestrator) windowStart() int64 {
	now := o.clock.Now()
	day := now.AddDate(0, 0, -o.lookback)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start.Unix()
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, token.ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, token.ErrRefreshFailed):
		return "refresh_failed"
	default:
		return "error"
	}
}
