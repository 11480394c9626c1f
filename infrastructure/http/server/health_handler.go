package server

import (
	"net/http"
)

// HandleHealth reports liveness with the live connection figures and the last process sample.
func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.realtime.Stats()
	payload := envelope{
		"status":      "ok",
		"connections": stats.Connections,
		"channels":    stats.Channels,
	}
	if s.health != nil {
		payload["queueLength"] = s.health.QueueLength()
		if snapshot, ok := s.health.Health(); ok {
			payload["process"] = snapshot
		}
	}
	writeJSON(w, http.StatusOK, payload)
}
