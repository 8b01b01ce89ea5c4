package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3-frozen/dividend-monitor/internal/pipeline"
)

// LatestRun serves stats of the most recent pipeline run.
func LatestRun(engine *pipeline.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := engine.LastRun()
		if stats == nil {
			http.Error(w, `{"error":"no run completed yet"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}
}
