// Package quote fetches real-time quotes from the Tencent finance API and
// formats them as analysis context.
package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

// Data holds one instrument's real-time quote.
type Data struct {
	Code      string
	Name      string
	Price     float64
	Change    float64
	ChangePct float64
	Open      float64
	High      float64
	Low       float64
	Volume    float64
	Amount    float64
	PE        float64
	PB        float64
	MarketCap float64
	Time      string
	Currency  string
	Market    string
}

// Provider resolves instrument codes from free-form questions and fetches
// their quotes. Quote data is best-effort enrichment: any failure yields an
// empty context string.
type Provider struct {
	client  *http.Client
	baseURL string
	logger  *logging.Logger
}

// Well-known instrument names mapped to quote codes.
var stockAliases = map[string]string{
	"spacex": "us.RKLB",
	"tesla":  "us.TSLA",
	"特斯拉":    "us.TSLA",
	"腾讯":     "hk00700",
	"阿里巴巴":   "hk09988",
	"茅台":     "sh600519",
	"贵州茅台":   "sh600519",
	"中国平安":   "sh601318",
	"招商银行":   "sh600036",
	"宁德时代":   "sz300750",
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(sh[0-9]{6})`),
	regexp.MustCompile(`(sz[0-9]{6})`),
	regexp.MustCompile(`(hk[0-9]{5})`),
	regexp.MustCompile(`([0-9]{5,6})`),
}

var quotedPayloadRe = regexp.MustCompile(`"([^"]+)"`)

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL overrides the quote endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// NewProvider creates a quote provider.
func NewProvider(logger *logging.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Provider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://qt.gtimg.cn",
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// QuoteContext implements core.QuoteProvider. It returns a formatted quote
// table for the first instrument recognized in the query, or "" when the
// query names none or the fetch fails.
func (p *Provider) QuoteContext(ctx context.Context, query string) (string, error) {
	code := ParseCode(query)
	if code == "" {
		return "", nil
	}

	data, err := p.fetch(ctx, code)
	if err != nil {
		p.logger.Warn("quote fetch failed", "code", code, "error", err)
		return "", nil
	}
	if data == nil {
		return "", nil
	}
	return FormatQuote(data), nil
}

// ParseCode extracts an instrument code from free-form text. Aliases win over
// raw code patterns; bare digit runs get their market prefix inferred.
func ParseCode(query string) string {
	lower := strings.ToLower(query)
	for name, code := range stockAliases {
		if strings.Contains(query, name) || strings.Contains(lower, name) {
			return code
		}
	}

	for _, pattern := range codePatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		code := m[1]
		if isDigits(code) {
			switch {
			case len(code) == 5:
				code = "hk" + code
			case strings.HasPrefix(code, "6"):
				code = "sh" + code
			case strings.HasPrefix(code, "0"), strings.HasPrefix(code, "3"):
				code = "sz" + code
			}
		}
		return code
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (p *Provider) fetch(ctx context.Context, code string) (*Data, error) {
	endpoint := p.baseURL + "/q=" + code
	if strings.HasPrefix(code, "hk") {
		endpoint = p.baseURL + "/q=r_" + code
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote api returned status %d", resp.StatusCode)
	}

	return ParsePayload(code, string(body))
}

// ParsePayload decodes the Tencent quote format: a quoted, tilde-separated
// field list. Field positions differ between A-share and HK listings.
func ParsePayload(code, raw string) (*Data, error) {
	m := quotedPayloadRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("no quote payload in response")
	}
	fields := strings.Split(m[1], "~")
	if len(fields) < 50 {
		return nil, fmt.Errorf("quote payload too short: %d fields", len(fields))
	}

	f := func(i int) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return 0
		}
		return v
	}

	data := &Data{
		Code:      code,
		Name:      fields[1],
		Price:     f(3),
		Change:    f(31),
		ChangePct: f(32),
		Open:      f(5),
		High:      f(33),
		Low:       f(34),
		Volume:    f(36),
		Amount:    f(37),
		PE:        f(39),
		MarketCap: f(45),
		Time:      fields[30],
	}
	if strings.HasPrefix(code, "hk") {
		// HK payloads carry no PB field.
		data.Currency = "HKD"
		data.Market = "港股"
	} else {
		data.PB = f(46)
		data.Currency = "CNY"
		data.Market = "A股"
	}
	return data, nil
}

// FormatQuote renders the quote as a markdown table section for injection
// into expert prompts.
func FormatQuote(d *Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### 📊 %s (%s) 实时行情\n\n", d.Name, d.Code)
	b.WriteString("| 指标 | 数值 |\n|------|------|\n")
	fmt.Fprintf(&b, "| **最新价** | %.3f %s |\n", d.Price, d.Currency)
	fmt.Fprintf(&b, "| **涨跌幅** | %+.2f%% (%+.3f) |\n", d.ChangePct, d.Change)
	fmt.Fprintf(&b, "| **今开** | %.3f |\n", d.Open)
	fmt.Fprintf(&b, "| **最高** | %.3f |\n", d.High)
	fmt.Fprintf(&b, "| **最低** | %.3f |\n", d.Low)
	fmt.Fprintf(&b, "| **成交量** | %.2f 万股 |\n", d.Volume/10000)
	fmt.Fprintf(&b, "| **成交额** | %.2f 亿 |\n", d.Amount/1e8)
	fmt.Fprintf(&b, "| **市盈率** | %.2f |\n", d.PE)
	fmt.Fprintf(&b, "| **市净率** | %.2f |\n", d.PB)
	fmt.Fprintf(&b, "| **市值** | %.2f 亿 |\n", d.MarketCap)
	fmt.Fprintf(&b, "| **市场** | %s |\n", d.Market)
	fmt.Fprintf(&b, "| **更新时间** | %s |\n", d.Time)
	return b.String()
}
