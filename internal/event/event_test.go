package event

import "testing"

func TestExtractDividend(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
		found   bool
	}{
		{"grouped amount", "Trả cổ tức 1,500 đồng/CP", 1500, true},
		{"plain amount", "Trả cổ tức 500 đồng/CP", 500, true},
		{"advance payout", "Tạm ứng cổ tức 2,000 đồng/CP", 2000, true},
		{"million scale", "Cổ tức đặc biệt 1,234,567 đồng/CP", 1234567, true},
		{"no space before unit", "Cổ tức 800đồng/CP", 800, true},
		{"first match wins", "Đợt 1: 700 đồng/CP, đợt 2: 300 đồng/CP", 700, true},
		{"no unit marker", "Trả cổ tức bằng cổ phiếu tỷ lệ 10:1", 0, false},
		{"empty content", "", 0, false},
		{"unit without amount", "đồng/CP", 0, false},
		{"percent only", "Cổ tức 10% bằng tiền", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractDividend(tt.content)
			if found != tt.found || got != tt.want {
				t.Errorf("ExtractDividend(%q) = (%d, %v), want (%d, %v)",
					tt.content, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestRawEventAliases(t *testing.T) {
	tests := []struct {
		name string
		ev   RawEvent
		code string
		date string
		exch string
	}{
		{
			name: "api column names",
			ev:   RawEvent{"StockCode": "abc", "TradeDate": "20/06/2026", "Exchange": "HOSE"},
			code: "ABC",
			date: "20/06/2026",
			exch: "HOSE",
		},
		{
			name: "scraped vietnamese column names",
			ev:   RawEvent{"Mã CK": "VNM", "Ngày GDKHQ": "05/07/2026", "Sàn": "HNX"},
			code: "VNM",
			date: "05/07/2026",
			exch: "HNX",
		},
		{
			name: "first alias wins over later ones",
			ev:   RawEvent{"StockCode": "AAA", "Mã CK": "BBB"},
			code: "AAA",
		},
		{
			name: "empty value falls through to next alias",
			ev:   RawEvent{"StockCode": "", "Mã CK": "CCC"},
			code: "CCC",
		},
		{
			name: "missing fields",
			ev:   RawEvent{"Other": "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.StockCode(); got != tt.code {
				t.Errorf("StockCode() = %q, want %q", got, tt.code)
			}
			if got := tt.ev.ExRightsDate(); got != tt.date {
				t.Errorf("ExRightsDate() = %q, want %q", got, tt.date)
			}
			if got := tt.ev.Exchange(); got != tt.exch {
				t.Errorf("Exchange() = %q, want %q", got, tt.exch)
			}
		})
	}
}

func TestContentAliases(t *testing.T) {
	ev := RawEvent{"Nội dung": "Trả cổ tức 1,500 đồng/CP"}
	if got := ev.Content(); got != "Trả cổ tức 1,500 đồng/CP" {
		t.Errorf("Content() = %q", got)
	}
	v, ok := ev.ExtractDividend()
	if !ok || v != 1500 {
		t.Errorf("ExtractDividend() = (%d, %v), want (1500, true)", v, ok)
	}
}
