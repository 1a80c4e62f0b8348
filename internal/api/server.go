package api

import (
	"net/http"

	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mfeltz/heatsync/internal/heatmap"
	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/mfeltz/heatsync/internal/token"
	"github.com/rs/zerolog"
)

// DefaultGridCacheSize bounds the cached grid layouts; one entry per
// (weeks, reference day) pair.
const DefaultGridCacheSize = 32

// Config holds API server configuration
type Config struct {
	DefaultWeeks  int
	GridCacheSize int
}

// Server is the read-only widget surface: it serves the cached snapshot and
// computed grid layouts and never triggers a sync.
type Server struct {
	server    *http.Server
	router    *mux.Router
	snapshots storage.SnapshotStore
	weeks     int
	gridCache *lru.Cache[string, []heatmap.Cell]
	clock     token.Clock
	logger    zerolog.Logger
}

// NewServer creates an API server bound to addr.
func NewServer(addr string, snapshots storage.SnapshotStore, cfg Config, logger zerolog.Logger) (*Server, error) {
	if cfg.DefaultWeeks <= 0 {
		cfg.DefaultWeeks = heatmap.DefaultWeeks
	}
	if cfg.GridCacheSize <= 0 {
		cfg.GridCacheSize = DefaultGridCacheSize
	}

	cache, err := lru.New[string, []heatmap.Cell](cfg.GridCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		snapshots: snapshots,
		weeks:     cfg.DefaultWeeks,
		gridCache: cache,
		clock:     token.RealClock{},
		logger:    logger.With().Str("component", "api").Logger(),
	}

	s.router = s.routes()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	return s, nil
}

// WithClock replaces the server's clock. Tests only.
func (s *Server) WithClock(clock token.Clock) *Server {
	s.clock = clock
	return s
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting API server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()
	return nil
}

// Stop stops the API server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping API server")
	return s.server.Close()
}
