package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"如何看待腾讯的股价", "hk00700"},
		{"贵州茅台还能买吗", "sh600519"},
		{"分析一下 sh600036", "sh600036"},
		{"sz300750 走势如何", "sz300750"},
		{"hk09988 值得持有吗", "hk09988"},
		{"600519 的估值", "sh600519"},
		{"000001 如何", "sz000001"},
		{"300750 怎么看", "sz300750"},
		{"00700 港股", "hk00700"},
		{"tesla未来走势", "us.TSLA"},
		{"今天天气不错", ""},
		{"A股大盘怎么走", ""},
	}
	for _, tt := range tests {
		if got := ParseCode(tt.query); got != tt.want {
			t.Errorf("ParseCode(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// buildPayload fabricates a Tencent quote payload with the named positions
// filled and the rest zeroed.
func buildPayload(values map[int]string) string {
	fields := make([]string, 55)
	for i := range fields {
		fields[i] = "0"
	}
	for i, v := range values {
		fields[i] = v
	}
	return fmt.Sprintf(`v_sh600519="%s";`, strings.Join(fields, "~"))
}

func samplePayload() string {
	return buildPayload(map[int]string{
		1:  "贵州茅台",
		3:  "1688.000",
		5:  "1680.000",
		30: "20260831150001",
		31: "12.000",
		32: "0.72",
		33: "1690.000",
		34: "1671.000",
		36: "25000",
		37: "4220000000",
		39: "30.55",
		45: "21200.00",
		46: "8.12",
	})
}

func TestParsePayload(t *testing.T) {
	d, err := ParsePayload("sh600519", samplePayload())
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if d.Name != "贵州茅台" || d.Price != 1688 {
		t.Errorf("Name/Price = %q/%v", d.Name, d.Price)
	}
	if d.ChangePct != 0.72 || d.Change != 12 {
		t.Errorf("Change = %v/%v", d.Change, d.ChangePct)
	}
	if d.PE != 30.55 || d.PB != 8.12 {
		t.Errorf("PE/PB = %v/%v", d.PE, d.PB)
	}
	if d.Market != "A股" || d.Currency != "CNY" {
		t.Errorf("Market/Currency = %q/%q", d.Market, d.Currency)
	}
	if d.Time != "20260831150001" {
		t.Errorf("Time = %q", d.Time)
	}
}

func TestParsePayloadHongKong(t *testing.T) {
	d, err := ParsePayload("hk00700", buildPayload(map[int]string{1: "腾讯控股", 3: "320.0"}))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if d.Market != "港股" || d.Currency != "HKD" {
		t.Errorf("Market/Currency = %q/%q", d.Market, d.Currency)
	}
	if d.PB != 0 {
		t.Errorf("PB = %v, HK payloads carry none", d.PB)
	}
}

func TestParsePayloadMalformed(t *testing.T) {
	if _, err := ParsePayload("sh600519", "pv_none=1;"); err == nil {
		t.Error("expected error for missing payload")
	}
	if _, err := ParsePayload("sh600519", `v_x="a~b~c";`); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestQuoteContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.String(), "q=sh600519") {
			t.Errorf("unexpected path %s", r.URL.String())
		}
		_, _ = w.Write([]byte(samplePayload()))
	}))
	defer srv.Close()

	p := NewProvider(logging.NewNop(), WithBaseURL(srv.URL))
	got, err := p.QuoteContext(context.Background(), "贵州茅台还能买吗")
	if err != nil {
		t.Fatalf("QuoteContext: %v", err)
	}
	for _, want := range []string{"贵州茅台", "1688.000", "实时行情", "| **市盈率** | 30.55 |"} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q in:\n%s", want, got)
		}
	}
}

func TestQuoteContextNoInstrument(t *testing.T) {
	p := NewProvider(logging.NewNop())
	got, err := p.QuoteContext(context.Background(), "今天天气如何")
	if err != nil || got != "" {
		t.Errorf("QuoteContext = %q, %v; want empty, nil", got, err)
	}
}

func TestQuoteContextFetchFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewProvider(logging.NewNop(), WithBaseURL(srv.URL))
	got, err := p.QuoteContext(context.Background(), "贵州茅台怎么样")
	if err != nil || got != "" {
		t.Errorf("QuoteContext = %q, %v; want empty degradation", got, err)
	}
}

func TestHongKongEndpointUsesRPrefix(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.String()
		_, _ = w.Write([]byte(buildPayload(map[int]string{1: "腾讯控股", 3: "320.0"})))
	}))
	defer srv.Close()

	p := NewProvider(logging.NewNop(), WithBaseURL(srv.URL))
	if _, err := p.QuoteContext(context.Background(), "腾讯的股价"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(path, "q=r_hk00700") {
		t.Errorf("path = %q, want the r_ prefix for HK codes", path)
	}
}
