// Package alert applies the threshold rules to enriched events and delivers
// the run's alert message.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/enrich"
	"github.com/web3-frozen/dividend-monitor/internal/metrics"
)

// Candidate is an enriched event that passed every threshold, plus the
// implied payout per share.
type Candidate struct {
	enrich.Enriched
	Payout int64 // đồng per share, round(close × percent / 100)
}

// Thresholds are the selection rules for one run.
type Thresholds struct {
	PriceCeiling int64 // keep when close price is strictly below
	PercentFloor int   // keep when yield percent is at or above
	MinLeadDays  int   // keep when ex-rights date is at least this far out
}

// Select keeps the events satisfying all three predicates, preserving order.
func Select(events []enrich.Enriched, th Thresholds, now time.Time) []Candidate {
	// Lead-day comparison is at calendar-day granularity: an ex-rights date
	// exactly minLeadDays out still qualifies.
	minDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, th.MinLeadDays)
	var out []Candidate
	for _, ev := range events {
		if ev.ClosePrice >= th.PriceCeiling {
			continue
		}
		if ev.Percent < th.PercentFloor {
			continue
		}
		if ev.ExRightsDate.Before(minDate) {
			continue
		}
		out = append(out, Candidate{
			Enriched: ev,
			Payout:   int64(math.Round(float64(ev.ClosePrice) * float64(ev.Percent) / 100)),
		})
	}
	return out
}

// Format renders the single multi-line alert message for a run.
func Format(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💰 DIVIDEND YIELD ALERT — %d candidate(s)\n\n", len(candidates)))
	for i, c := range candidates {
		b.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, c.Exchange, c.StockCode))
		b.WriteString(fmt.Sprintf("   Price: %dđ | Ex-rights: %s | Yield: %d%% (~%dđ/CP)\n",
			c.ClosePrice, c.ExRightsDate.Format("02/01/2006"), c.Percent, c.Payout))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SendFunc delivers one message to the alert chat.
type SendFunc func(chatID int64, text string) error

// Deduper suppresses candidates already alerted in a previous run.
type Deduper interface {
	AlreadySent(ctx context.Context, key string) bool
	Record(ctx context.Context, key string)
}

// Notifier formats and sends the alert for a run's candidates. Delivery is
// best-effort: a single attempt, failures logged and never propagated.
type Notifier struct {
	send   SendFunc
	chatID int64
	dedup  Deduper // optional
	logger *slog.Logger
}

func NewNotifier(send SendFunc, chatID int64, dedup Deduper, logger *slog.Logger) *Notifier {
	return &Notifier{send: send, chatID: chatID, dedup: dedup, logger: logger}
}

func dedupKey(c Candidate) string {
	return fmt.Sprintf("alert:%s:%s", c.StockCode, c.ExRightsDate.Format("2006-01-02"))
}

// Notify sends one message enumerating the candidates not yet alerted.
// An empty candidate set produces no send attempt. Returns the number of
// candidates included in the delivered message.
func (n *Notifier) Notify(ctx context.Context, candidates []Candidate) int {
	fresh := candidates
	if n.dedup != nil {
		fresh = fresh[:0:0]
		for _, c := range candidates {
			if n.dedup.AlreadySent(ctx, dedupKey(c)) {
				metrics.AlertsDeduplicatedTotal.Inc()
				continue
			}
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return 0
	}

	if err := n.send(n.chatID, Format(fresh)); err != nil {
		metrics.AlertsFailedTotal.Inc()
		n.logger.Error("alert send failed", "candidates", len(fresh), "error", err)
		return 0
	}
	metrics.AlertsSentTotal.Inc()

	if n.dedup != nil {
		for _, c := range fresh {
			n.dedup.Record(ctx, dedupKey(c))
		}
	}
	n.logger.Info("alert sent", "candidates", len(fresh))
	return len(fresh)
}
