// Package event holds the raw corporate-event record shape shared by all
// sources, plus the dividend-amount extractor applied to event content.
package event

import (
	"regexp"
	"strconv"
	"strings"
)

// RawEvent maps a source column name to its cell value for one announcement
// row. Column names differ by source and locale; semantic fields are resolved
// through the alias lists below. A RawEvent is never mutated after the source
// produces it.
type RawEvent map[string]string

// Alias lists for the semantic fields, tried in order. The API returns
// English column names, the event-calendar page returns Vietnamese ones.
var (
	stockCodeKeys = []string{"StockCode", "Mã CK", "Code"}
	exRightsKeys  = []string{"TradeDate", "NgayGDKHQ", "Ngày GDKHQ", "GDKHQ"}
	contentKeys   = []string{"EventContent", "Nội dung", "Event", "Sự kiện"}
	exchangeKeys  = []string{"Exchange", "Sàn"}
)

func (e RawEvent) lookup(keys []string) string {
	for _, k := range keys {
		if v, ok := e[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// StockCode returns the ticker symbol, or "" when no source column carried one.
func (e RawEvent) StockCode() string {
	return strings.ToUpper(strings.TrimSpace(e.lookup(stockCodeKeys)))
}

// ExRightsDate returns the raw ex-rights date string as published.
func (e RawEvent) ExRightsDate() string {
	return strings.TrimSpace(e.lookup(exRightsKeys))
}

// Content returns the free-text event description.
func (e RawEvent) Content() string {
	return e.lookup(contentKeys)
}

// Exchange returns the originating market tag.
func (e RawEvent) Exchange() string {
	return strings.TrimSpace(e.lookup(exchangeKeys))
}

// dividendExpr matches a thousands-grouped integer immediately followed by
// the đồng-per-share unit, e.g. "Trả cổ tức 1,500 đồng/CP".
var dividendExpr = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*đồng/CP`)

// ExtractDividend scans content for the first dividend amount and returns it
// in đồng per share. Absence of the pattern is a normal outcome, reported via
// the second return value; malformed input never errors.
func (e RawEvent) ExtractDividend() (int64, bool) {
	return ExtractDividend(e.Content())
}

// ExtractDividend parses a dividend amount out of free-text announcement
// content. Grouping commas are stripped before parsing.
func ExtractDividend(content string) (int64, bool) {
	m := dividendExpr.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
