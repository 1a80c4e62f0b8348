package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mfeltz/heatsync/internal/heatmap"
	"github.com/mfeltz/heatsync/internal/storage"
)

// maxWeeks caps the grid window a client may request.
const maxWeeks = 53

type snapshotResponse struct {
	Levels   map[string]int `json:"levels"`
	LastSync int64          `json:"last_sync"`
}

type gridCell struct {
	DayOfWeek int    `json:"day_of_week"`
	Week      int    `json:"week"`
	Date      string `json:"date,omitempty"`
	Level     int    `json:"level"`
}

type gridResponse struct {
	Weeks     int        `json:"weeks"`
	Reference string     `json:"reference"`
	LastSync  int64      `json:"last_sync"`
	Cells     []gridCell `json:"cells"`
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	router.HandleFunc("/api/grid", s.handleGrid).Methods(http.MethodGet)
	return router
}

// handleSnapshot serves the raw cached levels and sync timestamp.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, snapshotResponse{Levels: snap.Levels, LastSync: snap.LastSync})
}

// handleGrid serves the display-ready grid: the row-major cell layout with
// each cell's level filled in from the snapshot.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	weeks := s.weeks
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxWeeks {
			http.Error(w, fmt.Sprintf("weeks must be 1..%d", maxWeeks), http.StatusBadRequest)
			return
		}
		weeks = parsed
	}

	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	reference := s.clock.Now()
	refKey := reference.Format(heatmap.DayKeyFormat)

	cacheKey := fmt.Sprintf("%s/%d", refKey, weeks)
	cells, ok := s.gridCache.Get(cacheKey)
	if !ok {
		cells = heatmap.BuildGrid(weeks, reference)
		s.gridCache.Add(cacheKey, cells)
	}

	resp := gridResponse{
		Weeks:     weeks,
		Reference: refKey,
		LastSync:  snap.LastSync,
		Cells:     make([]gridCell, 0, len(cells)),
	}
	for _, cell := range cells {
		out := gridCell{DayOfWeek: cell.DayOfWeek, Week: cell.Week}
		if key := cell.Key(); key != "" {
			out.Date = key
			out.Level = snap.Levels[key]
		}
		resp.Cells = append(resp.Cells, out)
	}

	s.writeJSON(w, resp)
}

// loadSnapshot reads the stored snapshot; before the first sync it degrades
// to an empty one so the widget renders a blank grid instead of an error.
func (s *Server) loadSnapshot(r *http.Request) (*storage.SyncSnapshot, error) {
	snap, err := s.snapshots.Get(r.Context())
	if errors.Is(err, storage.ErrNotFound) {
		return &storage.SyncSnapshot{Levels: map[string]int{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if snap.Levels == nil {
		snap.Levels = map[string]int{}
	}
	return snap, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("Request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
