// Package export writes collected dividend events to CSV snapshots.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/web3-frozen/dividend-monitor/internal/event"
)

// utf8BOM makes the file open cleanly in Excel with Vietnamese text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes raw events to path. The column set is the union of all
// keys seen across the rows, sorted for a stable layout.
func WriteCSV(path string, events []event.RawEvent) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cols := columnSet(events)
	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, ev := range events {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = ev[c]
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// enrichedColumns is the fixed layout for enriched snapshots.
var enrichedColumns = []string{"stockCode", "exchange", "exRightsDate", "dividendValue", "closePrice", "percent", "content"}

// EnrichedRow is the subset of enriched fields that lands in CSV output.
type EnrichedRow struct {
	StockCode     string
	Exchange      string
	ExRightsDate  string
	DividendValue int64
	ClosePrice    int64
	Percent       int
	Content       string
}

// WriteEnrichedCSV writes enriched rows with a fixed column order.
func WriteEnrichedCSV(path string, rows []EnrichedRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(enrichedColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.StockCode,
			r.Exchange,
			r.ExRightsDate,
			strconv.FormatInt(r.DividendValue, 10),
			strconv.FormatInt(r.ClosePrice, 10),
			strconv.Itoa(r.Percent),
			r.Content,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func columnSet(events []event.RawEvent) []string {
	seen := make(map[string]struct{})
	for _, ev := range events {
		for k := range ev {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
