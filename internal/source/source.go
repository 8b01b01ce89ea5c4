// Package source provides the paginated corporate-event sources. Two
// interchangeable variants exist: the CorpEventData JSON endpoint and the
// event-calendar HTML page scraped through a render-then-plain fetch chain.
package source

import (
	"context"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/event"
)

// Query describes one collection window.
type Query struct {
	From     time.Time
	To       time.Time
	Exchange int
	Group    int
	PageSize int
}

// Source fetches one page of events for a query. An empty result with a nil
// error means the page is exhausted and pagination should stop; an error is
// reserved for transport-level failures (endpoint unreachable, timeout).
type Source interface {
	Name() string
	FetchPage(ctx context.Context, q Query, page int) ([]event.RawEvent, error)
}

const dateLayout = "2006-01-02"
