package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is how often the scheduler triggers a sync.
const DefaultInterval = 15 * time.Minute

// Scheduler triggers periodic syncs and on-demand ones via RunNow. It does
// not retry failed syncs; the next tick is the retry.
type Scheduler struct {
	orchestrator *Orchestrator
	interval     time.Duration
	logger       zerolog.Logger
	kickChan     chan struct{}
	stopChan     chan struct{}
	cancel       context.CancelFunc
}

// NewScheduler creates a sync scheduler.
func NewScheduler(orchestrator *Orchestrator, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
		logger:       logger.With().Str("component", "sync-scheduler").Logger(),
		kickChan:     make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.run(ctx)
	s.logger.Info().Dur("interval", s.interval).Msg("Sync scheduler started")
}

// Stop stops the scheduler and cancels any sync in flight.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info().Msg("Sync scheduler stopped")
}

// RunNow requests an immediate sync. Non-blocking; if a request is already
// pending it is coalesced.
func (s *Scheduler) RunNow() {
	select {
	case s.kickChan <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sync(ctx)
		case <-s.kickChan:
			s.sync(ctx)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) sync(ctx context.Context) {
	// Not logged in yet: stay quiet until the next tick.
	if !s.orchestrator.LoggedIn(ctx) {
		s.logger.Debug().Msg("Skipping sync, not logged in")
		return
	}

	if _, err := s.orchestrator.Sync(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Sync failed")
	}
}
