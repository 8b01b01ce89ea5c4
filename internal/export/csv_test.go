package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/web3-frozen/dividend-monitor/internal/event"
)

func readCSV(t *testing.T, path string) ([]byte, [][]string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	body := bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return raw, records
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	events := []event.RawEvent{
		{"StockCode": "ABC", "EventContent": "Tạm ứng cổ tức 2,000 đồng/CP"},
		{"StockCode": "XYZ", "Exchange": "HOSE"},
	}

	if err := WriteCSV(path, events); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	raw, records := readCSV(t, path)
	if !bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("file should start with UTF-8 BOM")
	}

	wantHeader := []string{"EventContent", "Exchange", "StockCode"}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	if records[1][2] != "ABC" || records[1][0] != "Tạm ứng cổ tức 2,000 đồng/CP" {
		t.Errorf("unexpected first row %v", records[1])
	}
	if records[2][1] != "HOSE" || records[2][0] != "" {
		t.Errorf("unexpected second row %v", records[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	// A zero-column header is a blank line, which the reader skips.
	_, records := readCSV(t, path)
	if len(records) != 0 {
		t.Errorf("expected no records, got %v", records)
	}
}

func TestWriteEnrichedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enriched.csv")
	rows := []EnrichedRow{
		{StockCode: "ABC", Exchange: "HOSE", ExRightsDate: "20/06/2026",
			DividendValue: 2000, ClosePrice: 25000, Percent: 8,
			Content: "Tạm ứng cổ tức 2,000 đồng/CP"},
	}

	if err := WriteEnrichedCSV(path, rows); err != nil {
		t.Fatalf("WriteEnrichedCSV: %v", err)
	}

	_, records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	want := []string{"ABC", "HOSE", "20/06/2026", "2000", "25000", "8", "Tạm ứng cổ tức 2,000 đồng/CP"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("row[%d] = %q, want %q", i, records[1][i], v)
		}
	}
}
