package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/web3-frozen/dividend-monitor/internal/event"
)

const (
	calendarPath = "/lich-su-kien.htm"
	eventTableID = "event-content"
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// fetcher retrieves the rendered HTML of one calendar page. Implementations
// are tried in order until one yields table rows.
type fetcher interface {
	name() string
	fetch(ctx context.Context, pageURL string) (string, error)
}

// Scraper extracts events from the calendar page. The page populates its
// table asynchronously, so a headless-Chrome fetch runs first and a plain
// HTTP GET covers pages that render server-side.
type Scraper struct {
	baseURL string
	tiers   []fetcher
	logger  *slog.Logger
}

func NewScraper(baseURL string, logger *slog.Logger) *Scraper {
	return &Scraper{
		baseURL: baseURL,
		tiers: []fetcher{
			&chromeFetcher{timeout: 45 * time.Second},
			&plainFetcher{client: &http.Client{Timeout: 20 * time.Second}},
		},
		logger: logger,
	}
}

func (s *Scraper) Name() string { return "scrape" }

// FetchPage tries each fetch tier in order and parses the event table from
// the first tier that yields rows. A page empty through every tier is the
// pagination terminator, not an error; a tier's transport failure is logged
// and the next tier tried.
func (s *Scraper) FetchPage(ctx context.Context, q Query, page int) ([]event.RawEvent, error) {
	pageURL := s.pageURL(q, page)

	var lastErr error
	for _, tier := range s.tiers {
		html, err := tier.fetch(ctx, pageURL)
		if err != nil {
			s.logger.Warn("calendar fetch tier failed",
				"tier", tier.name(), "page", page, "error", err)
			lastErr = err
			continue
		}
		rows := parseEventTable(html)
		if len(rows) > 0 {
			return rows, nil
		}
		s.logger.Info("calendar fetch tier yielded no rows",
			"tier", tier.name(), "page", page)
	}

	if lastErr != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, lastErr)
	}
	return nil, nil
}

func (s *Scraper) pageURL(q Query, page int) string {
	v := url.Values{}
	v.Set("from", q.From.Format(dateLayout))
	v.Set("to", q.To.Format(dateLayout))
	v.Set("tab", "1")
	v.Set("exchange", strconv.Itoa(q.Exchange))
	v.Set("page", strconv.Itoa(page))
	v.Set("group", strconv.Itoa(q.Group))
	return s.baseURL + calendarPath + "?" + v.Encode()
}

// parseEventTable pulls rows out of the table with id "event-content". The
// first row supplies column names; later rows are kept only when they carry
// at least as many cells as there are headers, and only the first
// len(headers) cells are mapped.
func parseEventTable(html string) []event.RawEvent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	table := doc.Find("table#" + eventTableID).First()
	if table.Length() == 0 {
		return nil
	}

	trs := table.Find("tr")
	if trs.Length() < 2 {
		return nil
	}

	var headers []string
	trs.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})
	if len(headers) == 0 {
		return nil
	}

	var rows []event.RawEvent
	trs.Slice(1, trs.Length()).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() < len(headers) {
			return
		}
		row := make(event.RawEvent, len(headers))
		cells.Slice(0, len(headers)).Each(func(i int, cell *goquery.Selection) {
			row[headers[i]] = strings.TrimSpace(cell.Text())
		})
		rows = append(rows, row)
	})
	return rows
}

// chromeFetcher renders the page in headless Chrome. The allocator and tab
// are scoped to a single fetch and torn down on every exit path; a session
// is never reused across pages.
type chromeFetcher struct {
	timeout time.Duration
}

func (c *chromeFetcher) name() string { return "chrome" }

func (c *chromeFetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, c.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp render: %w", err)
	}
	return html, nil
}

// plainFetcher does a plain HTTP GET for pages whose table is rendered
// server-side.
type plainFetcher struct {
	client *http.Client
}

func (p *plainFetcher) name() string { return "http" }

func (p *plainFetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get calendar page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("calendar page status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read calendar page: %w", err)
	}
	return string(body), nil
}
