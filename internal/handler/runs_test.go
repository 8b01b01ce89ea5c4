package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/web3-frozen/dividend-monitor/internal/pipeline"
)

func TestLatestRunNoRunYet(t *testing.T) {
	engine := pipeline.NewEngine(nil, nil, nil, nil, pipeline.Options{}, slog.Default())

	handler := LatestRun(engine)
	req := httptest.NewRequest(http.MethodGet, "/api/runs/latest", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestListEventsInvalidLimit(t *testing.T) {
	handler := ListEvents(nil)

	for _, v := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/events?limit="+v, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%q: status = %d, want %d", v, rec.Code, http.StatusBadRequest)
		}
	}
}
