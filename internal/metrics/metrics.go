package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dividend_monitor",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dividend_monitor",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Collection metrics ─────────────────────────────────────────────────

var (
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "collect",
		Name:      "pages_total",
		Help:      "Total pages fetched per source and outcome.",
	}, []string{"source", "status"})

	PageFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dividend_monitor",
		Subsystem: "collect",
		Name:      "page_duration_seconds",
		Help:      "Duration of a single page fetch per source in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"source"})

	RowsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "collect",
		Name:      "rows_total",
		Help:      "Total event rows collected per source.",
	}, []string{"source"})
)

// ── Enrichment metrics ─────────────────────────────────────────────────

var (
	PriceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "enrich",
		Name:      "price_lookups_total",
		Help:      "Total price oracle lookups by outcome.",
	}, []string{"status"})

	EventsEnriched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "enrich",
		Name:      "events_total",
		Help:      "Events kept or dropped by the enrichment stage.",
	}, []string{"outcome"})
)

// ── Run / alert metrics ────────────────────────────────────────────────

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "run",
		Name:      "total",
		Help:      "Total pipeline runs by final status.",
	}, []string{"status"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dividend_monitor",
		Subsystem: "run",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of a full pipeline run.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	LastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dividend_monitor",
		Subsystem: "run",
		Name:      "last_success_timestamp",
		Help:      "Unix timestamp of the last successful run.",
	})

	AlertsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "alerts",
		Name:      "sent_total",
		Help:      "Total alert messages successfully delivered.",
	})

	AlertsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "alerts",
		Name:      "failed_total",
		Help:      "Total alert delivery failures.",
	})

	AlertsDeduplicatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dividend_monitor",
		Subsystem: "alerts",
		Name:      "deduplicated_total",
		Help:      "Total alert candidates suppressed by deduplication.",
	})
)
