package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/web3-frozen/dividend-monitor/internal/store"
)

const defaultEventLimit = 50

// ListEvents serves the most recently persisted dividend events. An
// optional ?limit= caps the result size, clamped to 500.
func ListEvents(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultEventLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
				return
			}
			if n > 500 {
				n = 500
			}
			limit = n
		}

		events, err := s.ListRecentEvents(r.Context(), limit)
		if err != nil {
			http.Error(w, `{"error":"failed to list events"}`, http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []store.DividendEvent{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(events)
	}
}
