package quote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func candleServer(t *testing.T, close, high, low float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("interval"); got != "1D" {
			t.Errorf("interval = %q, want 1D", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]float64{{"close": close, "high": high, "low": low}},
		})
	}))
}

var asOf = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func TestPriceAsOfCloseHighLowPreference(t *testing.T) {
	tests := []struct {
		name             string
		close, high, low float64
		want             float64
	}{
		{"close present", 25, 26, 24, 25},
		{"close missing, high used", 0, 26, 24, 26},
		{"only low", 0, 0, 24, 24},
		{"all zero", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := candleServer(t, tt.close, tt.high, tt.low)
			defer srv.Close()

			v := NewVCI(srv.URL, slog.Default())
			if got := v.PriceAsOf(context.Background(), "ABC", asOf); got != tt.want {
				t.Errorf("PriceAsOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceAsOfEmptyFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]float64{}})
	}))
	defer srv.Close()

	v := NewVCI(srv.URL, slog.Default())
	if got := v.PriceAsOf(context.Background(), "ABC", asOf); got != 0 {
		t.Errorf("PriceAsOf = %v, want 0 for empty frame", got)
	}
}

func TestPriceAsOfProviderFailureMapsToZero(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		v := NewVCI(srv.URL, slog.Default())
		if got := v.PriceAsOf(context.Background(), "ABC", asOf); got != 0 {
			t.Errorf("PriceAsOf = %v, want 0", got)
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		v := NewVCI(srv.URL, slog.Default())
		if got := v.PriceAsOf(context.Background(), "ABC", asOf); got != 0 {
			t.Errorf("PriceAsOf = %v, want 0", got)
		}
	})

	t.Run("garbage body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		v := NewVCI(srv.URL, slog.Default())
		if got := v.PriceAsOf(context.Background(), "ABC", asOf); got != 0 {
			t.Errorf("PriceAsOf = %v, want 0", got)
		}
	})
}

func TestPriceAsOfQueriesSingleDay(t *testing.T) {
	var start, end string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start = r.URL.Query().Get("start")
		end = r.URL.Query().Get("end")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]float64{{"close": 25}},
		})
	}))
	defer srv.Close()

	v := NewVCI(srv.URL, slog.Default())
	v.PriceAsOf(context.Background(), "ABC", asOf)
	if start != "2026-06-15" || end != "2026-06-15" {
		t.Errorf("queried range %s..%s, want the single day 2026-06-15", start, end)
	}
}
