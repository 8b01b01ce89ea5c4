// Package pipeline ties collection, enrichment, alerting, and persistence
// into scheduled end-to-end runs.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/alert"
	"github.com/web3-frozen/dividend-monitor/internal/collector"
	"github.com/web3-frozen/dividend-monitor/internal/enrich"
	"github.com/web3-frozen/dividend-monitor/internal/export"
	"github.com/web3-frozen/dividend-monitor/internal/metrics"
	"github.com/web3-frozen/dividend-monitor/internal/source"
	"github.com/web3-frozen/dividend-monitor/internal/store"
)

// RunStore is the subset of store operations a run needs to persist results.
type RunStore interface {
	InsertRun(ctx context.Context, r store.Run) (int64, error)
	InsertDividendEvents(ctx context.Context, runID int64, events []store.DividendEvent) error
	CleanupOldEvents(ctx context.Context, age time.Duration) (int64, error)
}

// Options carries the run parameters of one deployment.
type Options struct {
	WindowDays    int
	MaxPages      int
	RunHour       int
	RetentionDays int // persisted events older than this are pruned after a run; 0 keeps forever
	Location      *time.Location
	CSVPath       string
	Exchange      int
	Group         int
	PageSize      int
	Thresholds    alert.Thresholds
}

// RunStats summarizes the most recent pipeline run for the HTTP surface.
type RunStats struct {
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	Duration   float64   `json:"duration_seconds"`
	Collected  int       `json:"collected"`
	Enriched   int       `json:"enriched"`
	Candidates int       `json:"candidates"`
	Alerted    int       `json:"alerted"`
}

// Engine runs the dividend pipeline on a daily schedule.
type Engine struct {
	collector *collector.Collector
	enricher  *enrich.Enricher
	notifier  *alert.Notifier
	store     RunStore // nil disables persistence
	opts      Options
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	lastRun *RunStats
}

func NewEngine(c *collector.Collector, e *enrich.Enricher, n *alert.Notifier, s RunStore, opts Options, logger *slog.Logger) *Engine {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Engine{
		collector: c,
		enricher:  e,
		notifier:  n,
		store:     s,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// LastRun returns stats of the most recent completed run, or nil before the
// first one finishes.
func (e *Engine) LastRun() *RunStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastRun
}

// Run executes one pipeline pass immediately, then repeats daily at the
// configured local hour until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.RunOnce(ctx)

	timer := e.nextRunTimer()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			e.RunOnce(ctx)
			timer = e.nextRunTimer()
		}
	}
}

// RunOnce executes a single collect → enrich → alert → persist pass. A
// partial collection still flows through the remaining stages; only a
// cancelled context aborts the run outright.
func (e *Engine) RunOnce(ctx context.Context) *RunStats {
	started := e.now()
	status := "ok"

	today := started.In(e.opts.Location)
	q := source.Query{
		From:     today,
		To:       today.AddDate(0, 0, e.opts.WindowDays),
		Exchange: e.opts.Exchange,
		Group:    e.opts.Group,
		PageSize: e.opts.PageSize,
	}

	raw, err := e.collector.Collect(ctx, q, e.opts.MaxPages)
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Info("run aborted", "error", ctx.Err())
			metrics.RunsTotal.WithLabelValues("aborted").Inc()
			return nil
		}
		// Continue with whatever pages made it through.
		e.logger.Error("collection ended early", "error", err, "rows", len(raw))
		status = "partial"
	}

	if e.opts.CSVPath != "" {
		if err := export.WriteCSV(e.opts.CSVPath, raw); err != nil {
			e.logger.Error("csv export failed", "path", e.opts.CSVPath, "error", err)
		}
	}

	enriched := e.enricher.Enrich(ctx, raw)
	if e.opts.CSVPath != "" {
		rows := make([]export.EnrichedRow, 0, len(enriched))
		for _, ev := range enriched {
			rows = append(rows, export.EnrichedRow{
				StockCode:     ev.StockCode,
				Exchange:      ev.Exchange,
				ExRightsDate:  ev.ExRightsDate.Format("02/01/2006"),
				DividendValue: ev.DividendValue,
				ClosePrice:    ev.ClosePrice,
				Percent:       ev.Percent,
				Content:       ev.Content,
			})
		}
		path := enrichedCSVPath(e.opts.CSVPath)
		if err := export.WriteEnrichedCSV(path, rows); err != nil {
			e.logger.Error("csv export failed", "path", path, "error", err)
		}
	}

	candidates := alert.Select(enriched, e.opts.Thresholds, today)
	sent := e.notifier.Notify(ctx, candidates)

	stats := &RunStats{
		Source:     e.collector.Source(),
		StartedAt:  started,
		Duration:   e.now().Sub(started).Seconds(),
		Collected:  len(raw),
		Enriched:   len(enriched),
		Candidates: len(candidates),
		Alerted:    sent,
	}
	e.persist(ctx, stats, enriched, candidates, sent > 0)

	e.mu.Lock()
	e.lastRun = stats
	e.mu.Unlock()

	metrics.RunsTotal.WithLabelValues(status).Inc()
	metrics.RunDuration.Observe(stats.Duration)
	metrics.LastRunTimestamp.SetToCurrentTime()

	e.logger.Info("run complete",
		"source", stats.Source,
		"collected", stats.Collected,
		"enriched", stats.Enriched,
		"candidates", stats.Candidates,
		"alerted", stats.Alerted,
		"duration", time.Duration(stats.Duration*float64(time.Second)).Round(time.Millisecond))
	return stats
}

func (e *Engine) persist(ctx context.Context, stats *RunStats, enriched []enrich.Enriched, candidates []alert.Candidate, delivered bool) {
	if e.store == nil {
		return
	}

	runID, err := e.store.InsertRun(ctx, store.Run{
		Source:    stats.Source,
		Collected: stats.Collected,
		Enriched:  stats.Enriched,
		Alerted:   stats.Alerted,
		StartedAt: stats.StartedAt,
		Duration:  stats.Duration,
	})
	if err != nil {
		e.logger.Error("persist run failed", "error", err)
		return
	}

	alerted := make(map[string]bool, len(candidates))
	if delivered {
		for _, c := range candidates {
			alerted[c.StockCode] = true
		}
	}

	rows := make([]store.DividendEvent, 0, len(enriched))
	for _, ev := range enriched {
		rows = append(rows, store.DividendEvent{
			RunID:         runID,
			StockCode:     ev.StockCode,
			Exchange:      ev.Exchange,
			ExRightsDate:  ev.ExRightsDate,
			Content:       ev.Content,
			DividendValue: ev.DividendValue,
			ClosePrice:    ev.ClosePrice,
			Percent:       ev.Percent,
			Alerted:       alerted[ev.StockCode],
		})
	}
	if err := e.store.InsertDividendEvents(ctx, runID, rows); err != nil {
		e.logger.Error("persist events failed", "run_id", runID, "error", err)
	}

	if e.opts.RetentionDays > 0 {
		age := time.Duration(e.opts.RetentionDays) * 24 * time.Hour
		removed, err := e.store.CleanupOldEvents(ctx, age)
		if err != nil {
			e.logger.Error("event cleanup failed", "error", err)
		} else if removed > 0 {
			e.logger.Info("pruned old events", "removed", removed, "retention_days", e.opts.RetentionDays)
		}
	}
}

// enrichedCSVPath derives the enriched snapshot's filename from the raw one.
func enrichedCSVPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_enriched" + ext
}

func (e *Engine) nextRunTimer() *time.Timer {
	now := e.now().In(e.opts.Location)
	next := time.Date(now.Year(), now.Month(), now.Day(), e.opts.RunHour, 0, 0, 0, e.opts.Location)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	d := next.Sub(now)
	e.logger.Info("next scheduled run", "at", next.Format(time.RFC3339), "in", d.Round(time.Minute))
	return time.NewTimer(d)
}
