package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleOracleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":       s.cfg.GeminiModel,
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.OracleStats(),
	})
}
