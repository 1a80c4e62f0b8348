package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Sync metrics
	SyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatsync_syncs_total",
			Help: "Total sync attempts by outcome",
		},
		[]string{"result"},
	)

	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heatsync_sync_duration_seconds",
			Help:    "Sync duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActivitiesFetched = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heatsync_activities_fetched",
			Help: "Activities returned by the last successful sync",
		},
	)

	DaysTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heatsync_days_tracked",
			Help: "Days with at least one activity in the last snapshot",
		},
	)

	// Token metrics
	TokenRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatsync_token_refreshes_total",
			Help: "Total token refresh attempts by outcome",
		},
		[]string{"result"},
	)

	// Upstream metrics
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatsync_upstream_errors_total",
			Help: "Upstream API errors by endpoint",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(
		SyncsTotal,
		SyncDuration,
		ActivitiesFetched,
		DaysTracked,
		TokenRefreshesTotal,
		UpstreamErrorsTotal,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
