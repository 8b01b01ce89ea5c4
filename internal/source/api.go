package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/event"
)

const corpEventPath = "/data/CorpEventData"

// API fetches corporate events from the structured CorpEventData endpoint.
type API struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewAPI(baseURL string, logger *slog.Logger) *API {
	return &API{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

func (a *API) Name() string { return "api" }

type corpEventResponse struct {
	Data []map[string]any `json:"data"`
}

// FetchPage posts the query form and returns the page's rows. A non-success
// status or an empty data array terminates pagination (nil, nil); only a
// transport failure is reported as an error.
func (a *API) FetchPage(ctx context.Context, q Query, page int) ([]event.RawEvent, error) {
	form := url.Values{}
	form.Set("fromDate", q.From.Format(dateLayout))
	form.Set("toDate", q.To.Format(dateLayout))
	form.Set("code", "")
	form.Set("catID", strconv.Itoa(q.Group))
	form.Set("exchangeID", strconv.Itoa(q.Exchange))
	form.Set("page", strconv.Itoa(page))
	form.Set("pageSize", strconv.Itoa(q.PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+corpEventPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", a.baseURL+"/lich-su-kien.htm")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("event api non-success status, treating as end of data",
			"status", resp.StatusCode, "page", page)
		return nil, nil
	}

	var body corpEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		a.logger.Warn("event api malformed body, treating as end of data",
			"page", page, "error", err)
		return nil, nil
	}

	rows := make([]event.RawEvent, 0, len(body.Data))
	for _, raw := range body.Data {
		rows = append(rows, stringify(raw))
	}
	return rows, nil
}

// stringify flattens a decoded JSON row into the column→text shape shared
// with the scraped source.
func stringify(raw map[string]any) event.RawEvent {
	row := make(event.RawEvent, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			row[k] = ""
		case string:
			row[k] = t
		case float64:
			if t == float64(int64(t)) {
				row[k] = strconv.FormatInt(int64(t), 10)
			} else {
				row[k] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		case bool:
			row[k] = strconv.FormatBool(t)
		default:
			row[k] = fmt.Sprint(t)
		}
	}
	return row
}
