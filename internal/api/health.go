package api

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// handleRoot is the liveness probe: it round-trips a SELECT NOW() through the
// store and echoes the store's clock as plain text.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	var now time.Time
	if err := s.pool.QueryRow(r.Context(), "SELECT NOW()").Scan(&now); err != nil {
		s.log.Error("root probe failed", zap.Error(err))
		http.Error(w, "Database connection error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "AlphaTracker API is running. DB Time: %s\n", now.Format(time.RFC3339))
}

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Database string `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := s.pool.Ping(r.Context()); err != nil {
		dbStatus = "disconnected"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  healthServices{Database: dbStatus},
	})
}
