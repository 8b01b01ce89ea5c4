// Package collector drives pagination across an event source, assembling
// the raw event set for one run.
package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/event"
	"github.com/web3-frozen/dividend-monitor/internal/metrics"
	"github.com/web3-frozen/dividend-monitor/internal/source"
)

type Collector struct {
	src    source.Source
	delay  time.Duration
	logger *slog.Logger
}

// New wires a collector around a source. delay is slept after every fetched
// page to avoid overloading the origin; pass 0 when the source has no
// mandated pacing.
func New(src source.Source, delay time.Duration, logger *slog.Logger) *Collector {
	return &Collector{src: src, delay: delay, logger: logger}
}

// Source reports the name of the wrapped source.
func (c *Collector) Source() string { return c.src.Name() }

// Collect fetches pages 1..maxPages in order, concatenating rows in source
// order, and stops at the first exhausted page. Identical data returned
// twice is accumulated as-is; duplicate suppression is left to downstream
// consumers. A transport failure ends the run early and is returned along
// with the rows collected so far.
func (c *Collector) Collect(ctx context.Context, q source.Query, maxPages int) ([]event.RawEvent, error) {
	var all []event.RawEvent

	for page := 1; page <= maxPages; page++ {
		start := time.Now()
		rows, err := c.src.FetchPage(ctx, q, page)
		metrics.PageFetchDuration.WithLabelValues(c.src.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.PagesFetched.WithLabelValues(c.src.Name(), "error").Inc()
			c.logger.Error("page fetch failed, stopping collection",
				"source", c.src.Name(), "page", page, "error", err)
			return all, err
		}
		if len(rows) == 0 {
			metrics.PagesFetched.WithLabelValues(c.src.Name(), "empty").Inc()
			c.logger.Info("no rows on page, stopping collection",
				"source", c.src.Name(), "page", page)
			return all, nil
		}

		metrics.PagesFetched.WithLabelValues(c.src.Name(), "ok").Inc()
		metrics.RowsCollected.WithLabelValues(c.src.Name()).Add(float64(len(rows)))
		c.logger.Info("collected page",
			"source", c.src.Name(), "page", page, "rows", len(rows))
		all = append(all, rows...)

		if c.delay > 0 && page < maxPages {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(c.delay):
			}
		}
	}

	c.logger.Info("page budget exhausted",
		"source", c.src.Name(), "pages", maxPages, "rows", len(all))
	return all, nil
}
