// Package enrich joins collected events with oracle prices and derives the
// implied cash yield.
package enrich

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/event"
	"github.com/web3-frozen/dividend-monitor/internal/metrics"
	"github.com/web3-frozen/dividend-monitor/internal/quote"
)

// Enriched is a raw event extended with its derived fields. Created once per
// eligible input and never mutated afterwards.
type Enriched struct {
	Raw           event.RawEvent `json:"raw"`
	StockCode     string         `json:"stock_code"`
	Exchange      string         `json:"exchange"`
	ExRightsDate  time.Time      `json:"ex_rights_date"`
	Content       string         `json:"content"`
	DividendValue int64          `json:"dividend_value"` // đồng per share, 0 when no pattern matched
	ClosePrice    int64          `json:"close_price"`    // đồng, quote scaled to base units
	Percent       int            `json:"percent"`        // rounded yield, 0 unless both inputs positive
}

// Options carries the run parameters the enrichment stage depends on. The
// lead time and quote scale vary between deployments, so both are explicit
// rather than baked in.
type Options struct {
	LeadTimeDays int            // events at or before now+lead are dropped
	Scale        int64          // quote denomination factor, e.g. 1000
	Location     *time.Location // exchange-local time zone
}

type Enricher struct {
	oracle quote.Oracle
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func New(oracle quote.Oracle, opts Options, logger *slog.Logger) *Enricher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Enricher{oracle: oracle, opts: opts, logger: logger, now: time.Now}
}

// sessionOpen is the exchange session-open threshold. Before it, the
// effective pricing date is the previous calendar day.
const (
	sessionOpenHour   = 9
	sessionOpenMinute = 30
)

// PricingDate applies the trading-session boundary rule to now.
func PricingDate(now time.Time) time.Time {
	if now.Hour() < sessionOpenHour ||
		(now.Hour() == sessionOpenHour && now.Minute() < sessionOpenMinute) {
		return now.AddDate(0, 0, -1)
	}
	return now
}

// dayFirst layouts tried in order when parsing an ex-rights date.
var dateLayouts = []string{"02/01/2006", "2/1/2006", "02-01-2006", "2006-01-02"}

func parseDayFirst(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Enrich produces one Enriched per eligible input, preserving input order.
// Events whose ex-rights date is unparsable or not strictly after
// now+leadTime are dropped. Eligible events without a stock code are kept
// with zeroed price and percent; everything else gets one oracle lookup.
func (e *Enricher) Enrich(ctx context.Context, events []event.RawEvent) []Enriched {
	now := e.now().In(e.opts.Location)
	minDate := now.AddDate(0, 0, e.opts.LeadTimeDays)
	pricingDate := PricingDate(now)

	out := make([]Enriched, 0, len(events))
	for _, ev := range events {
		exDate, ok := parseDayFirst(ev.ExRightsDate())
		if !ok {
			metrics.EventsEnriched.WithLabelValues("dropped_unparsable_date").Inc()
			e.logger.Debug("dropping event with unparsable date",
				"code", ev.StockCode(), "date", ev.ExRightsDate())
			continue
		}
		if !exDate.After(minDate) {
			metrics.EventsEnriched.WithLabelValues("dropped_ineligible_date").Inc()
			continue
		}

		dividend, _ := ev.ExtractDividend()
		enriched := Enriched{
			Raw:           ev,
			StockCode:     ev.StockCode(),
			Exchange:      ev.Exchange(),
			ExRightsDate:  exDate,
			Content:       ev.Content(),
			DividendValue: dividend,
		}

		if enriched.StockCode == "" {
			metrics.EventsEnriched.WithLabelValues("kept_no_code").Inc()
			out = append(out, enriched)
			continue
		}

		price := e.oracle.PriceAsOf(ctx, enriched.StockCode, pricingDate)
		enriched.ClosePrice = int64(math.Round(price * float64(e.opts.Scale)))
		if dividend > 0 && enriched.ClosePrice > 0 {
			enriched.Percent = int(math.Round(float64(dividend) * 100 / float64(enriched.ClosePrice)))
		}
		metrics.EventsEnriched.WithLabelValues("kept").Inc()
		out = append(out, enriched)
	}
	return out
}
