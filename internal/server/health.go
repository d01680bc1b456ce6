package server

import (
	"context"
	"net/http"
	"time"
)

const readyTimeout = 2 * time.Second

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// ComponentHealth represents the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs int64           `json:"latency_ms"`
}

type readiness struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// handleHealth is the liveness probe: the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the database and the bucket.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	start := time.Now()
	storage := ComponentHealth{Status: ComponentStatusUp}
	if err := s.files.Ping(ctx); err != nil {
		s.requestLogger(r).Warn("readiness check failed", "err", err)
		storage = ComponentHealth{Status: ComponentStatusDown, Message: "storage unavailable"}
	}
	storage.LatencyMs = time.Since(start).Milliseconds()

	resp := readiness{
		Status:     "ready",
		Timestamp:  time.Now().UTC(),
		Components: map[string]ComponentHealth{"storage": storage},
	}
	status := http.StatusOK
	if storage.Status == ComponentStatusDown {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
