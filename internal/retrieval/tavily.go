package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// TavilyProvider queries the Tavily search API. It is the preferred engine
// for supplemental "important" searches when an API key is configured.
type TavilyProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// TavilyOption configures the provider.
type TavilyOption func(*TavilyProvider)

// WithTavilyBaseURL overrides the API endpoint, used by tests.
func WithTavilyBaseURL(u string) TavilyOption {
	return func(p *TavilyProvider) { p.baseURL = u }
}

// WithTavilyHTTPClient overrides the HTTP client.
func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(p *TavilyProvider) { p.client = c }
}

// NewTavilyProvider creates a Tavily provider with the given API key.
func NewTavilyProvider(apiKey string, opts ...TavilyOption) *TavilyProvider {
	p := &TavilyProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.tavily.com/search",
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements core.SearchProvider.
func (p *TavilyProvider) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search implements core.SearchProvider.
func (p *TavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]core.SearchResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("tavily api key not configured")
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:        p.apiKey,
		Query:         query,
		MaxResults:    maxResults,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("tavily response: %w", err)
	}

	results := make([]core.SearchResult, 0, len(parsed.Results)+1)
	// The AI-generated answer, when present, leads the list: it is usually
	// the densest snippet available.
	if parsed.Answer != "" {
		results = append(results, core.SearchResult{
			Title:   "Tavily AI 摘要",
			Snippet: parsed.Answer,
			Content: parsed.Answer,
		})
	}
	for _, r := range parsed.Results {
		results = append(results, core.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: truncate(r.Content, 500),
			Content: r.Content,
		})
	}
	return results, nil
}
