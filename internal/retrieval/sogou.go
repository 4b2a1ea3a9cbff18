package retrieval

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// SogouProvider scrapes Sogou web search. It carries no API key and works
// well for Chinese-language queries, which makes it the default engine.
type SogouProvider struct {
	client  *http.Client
	baseURL string
}

const sogouUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	sogouTitleRe   = regexp.MustCompile(`(?s)<h3[^>]*>.*?<a[^>]+href="([^"]+)"[^>]*>(.*?)</a>.*?</h3>`)
	sogouSnippetRe = regexp.MustCompile(`(?s)<p[^>]*class="[^"]*str[^"]*"[^>]*>(.*?)</p>`)
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// SogouOption configures the provider.
type SogouOption func(*SogouProvider)

// WithSogouBaseURL overrides the search endpoint, used by tests.
func WithSogouBaseURL(u string) SogouOption {
	return func(p *SogouProvider) { p.baseURL = u }
}

// WithSogouHTTPClient overrides the HTTP client.
func WithSogouHTTPClient(c *http.Client) SogouOption {
	return func(p *SogouProvider) { p.client = c }
}

// NewSogouProvider creates a Sogou search provider.
func NewSogouProvider(opts ...SogouOption) *SogouProvider {
	p := &SogouProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: "https://www.sogou.com/web",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements core.SearchProvider.
func (p *SogouProvider) Name() string { return "sogou" }

// Search implements core.SearchProvider.
func (p *SogouProvider) Search(ctx context.Context, query string, maxResults int) ([]core.SearchResult, error) {
	endpoint := p.baseURL + "?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", sogouUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sogou request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sogou returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	return parseSogouHTML(string(body), maxResults), nil
}

// parseSogouHTML extracts results from the search page. Sogou markup is not
// stable; anything that fails to clean up is dropped rather than reported.
func parseSogouHTML(html string, maxResults int) []core.SearchResult {
	titleMatches := sogouTitleRe.FindAllStringSubmatch(html, -1)
	snippetMatches := sogouSnippetRe.FindAllStringSubmatch(html, -1)

	results := make([]core.SearchResult, 0, len(titleMatches))
	for _, m := range titleMatches {
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
		href, rawTitle := m[1], m[2]

		title := strings.TrimSpace(htmlTagRe.ReplaceAllString(rawTitle, ""))
		title = spaceRe.ReplaceAllString(title, " ")
		if len(title) < 3 {
			continue
		}

		// Sogou wraps results in /link?url= redirect URLs; keep them
		// absolute so they stay clickable.
		if strings.HasPrefix(href, "/") {
			href = "https://www.sogou.com" + href
		}

		snippet := ""
		if len(results) < len(snippetMatches) {
			snippet = strings.TrimSpace(htmlTagRe.ReplaceAllString(snippetMatches[len(results)][1], ""))
		}
		if snippet == "" {
			snippet = "来源: 搜狗搜索"
		}

		results = append(results, core.SearchResult{
			Title:   truncate(title, 100),
			URL:     href,
			Snippet: truncate(snippet, 300),
		})
	}
	return results
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
