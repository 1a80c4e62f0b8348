package auth

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CallbackServer captures the provider's OAuth redirect on localhost and
// resolves the pending authorization request.
type CallbackServer struct {
	server *http.Server
	flow   *Flow
	logger zerolog.Logger
}

// NewCallbackServer creates a callback server bound to addr.
func NewCallbackServer(addr string, flow *Flow, logger zerolog.Logger) *CallbackServer {
	s := &CallbackServer{
		flow:   flow,
		logger: logger.With().Str("component", "auth-callback").Logger(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/callback", s.handleCallback).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:    addr,
		Handler: router,
	}

	return s
}

// Start starts the callback server.
func (s *CallbackServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting callback server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Callback server error")
		}
	}()
	return nil
}

// Stop stops the callback server.
func (s *CallbackServer) Stop() error {
	return s.server.Close()
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	pending := s.flow.Current()
	if pending == nil {
		http.Error(w, "no authorization in progress", http.StatusConflict)
		return
	}

	query := r.URL.Query()

	if reason := query.Get("error"); reason != "" {
		s.logger.Warn().Str("request_id", pending.ID).Str("reason", reason).Msg("Authorization denied")
		pending.Deny(reason)
		writePage(w, "Authorization denied. You can close this window.")
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "missing code parameter", http.StatusBadRequest)
		return
	}

	s.logger.Info().Str("request_id", pending.ID).Msg("Authorization code received")
	pending.Complete(code)
	writePage(w, "Account linked. You can close this window.")
}

func writePage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body><p>" + message + "</p></body></html>"))
}
