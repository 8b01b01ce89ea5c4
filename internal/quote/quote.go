// Package quote resolves last-traded prices from an external OHLC history
// provider. An unavailable price is a normal result (0), never an error.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/metrics"
)

// Oracle answers "last traded price for symbol as of date". Implementations
// map every provider failure to 0 so a single symbol can never abort a run.
type Oracle interface {
	PriceAsOf(ctx context.Context, symbol string, date time.Time) float64
}

const dateLayout = "2006-01-02"

type historyResponse struct {
	Data []struct {
		Close float64 `json:"close"`
		High  float64 `json:"high"`
		Low   float64 `json:"low"`
	} `json:"data"`
}

// VCI fetches daily candles from a VCI-style quote endpoint.
type VCI struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewVCI(baseURL string, logger *slog.Logger) *VCI {
	return &VCI{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// PriceAsOf queries the one-day history for symbol and returns close, falling
// back to high, then low. Any failure, and an empty frame, yields 0 with a
// logged warning.
func (v *VCI) PriceAsOf(ctx context.Context, symbol string, date time.Time) float64 {
	day := date.Format(dateLayout)
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", day)
	q.Set("end", day)
	q.Set("interval", "1D")

	price, err := v.fetch(ctx, q)
	if err != nil {
		metrics.PriceLookups.WithLabelValues("error").Inc()
		v.logger.Warn("price lookup failed", "symbol", symbol, "date", day, "error", err)
		return 0
	}
	if price == 0 {
		metrics.PriceLookups.WithLabelValues("unavailable").Inc()
		v.logger.Warn("no price available", "symbol", symbol, "date", day)
		return 0
	}
	metrics.PriceLookups.WithLabelValues("ok").Inc()
	return price
}

func (v *VCI) fetch(ctx context.Context, q url.Values) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.baseURL+"/history?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build quote request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote api status: %d", resp.StatusCode)
	}

	var body historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode quote history: %w", err)
	}
	if len(body.Data) == 0 {
		return 0, nil
	}

	c := body.Data[0]
	switch {
	case c.Close > 0:
		return c.Close, nil
	case c.High > 0:
		return c.High, nil
	default:
		return c.Low, nil
	}
}
