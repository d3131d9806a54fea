package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleAnalysisStats(w http.ResponseWriter, r *http.Request) {
	a := s.orchestrator.Analyzer()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"encoding":    a.Encoding(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       a.Stats().Snapshot(),
	})
}
