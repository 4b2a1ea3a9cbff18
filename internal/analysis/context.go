package analysis

import (
	"fmt"
	"strings"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// Snippet caps per context section. The first round takes a wider slice of
// the initial search; supplemental searches contribute less each.
const (
	initialSnippetLimit      = 5
	supplementalSnippetLimit = 3
)

// RunContext is the accumulated external-knowledge string injected into every
// expert prompt of a run. It is append-only and only mutated between rounds
// by the controller, never concurrently.
type RunContext struct {
	sections []string
}

// AddQuoteSection appends the market-data section.
func (c *RunContext) AddQuoteSection(quote string) {
	if quote == "" {
		return
	}
	c.sections = append(c.sections, "## 📊 实时行情数据\n\n"+quote)
}

// AddInitialSearch appends the first round's search section, keeping at most
// the top results.
func (c *RunContext) AddInitialSearch(results []core.SearchResult) {
	section := formatSnippets(results, initialSnippetLimit)
	if section == "" {
		return
	}
	c.sections = append(c.sections, "## 🔍 搜索结果\n\n"+section)
}

// AddSupplementalSearch appends results from a between-rounds search issued
// for a gap query. Earlier context is never removed.
func (c *RunContext) AddSupplementalSearch(query string, results []core.SearchResult) {
	section := formatSnippets(results, supplementalSnippetLimit)
	if section == "" {
		return
	}
	c.sections = append(c.sections, fmt.Sprintf("## 🔍 补充搜索：%s\n\n%s", query, section))
}

// String renders the full context, or "" when nothing was collected.
func (c *RunContext) String() string {
	return strings.Join(c.sections, "\n\n")
}

func formatSnippets(results []core.SearchResult, limit int) string {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("**%s**\n%s", r.Title, r.Snippet))
	}
	return strings.Join(parts, "\n\n")
}

// dedupeByURL removes later duplicates of the same URL, preserving
// first-retrieved order. Results without a URL (e.g. provider summaries) are
// kept as-is.
func dedupeByURL(results []core.SearchResult) []core.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]core.SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
