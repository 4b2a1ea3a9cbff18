// Package retrieval provides a uniform search interface over pluggable
// providers. Retrieval is best-effort context enrichment: a provider failure
// degrades to an empty result list and never stops an analysis run.
package retrieval

import (
	"context"
	"sync"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

// Gateway routes search calls to registered providers.
type Gateway struct {
	logger *logging.Logger

	mu          sync.RWMutex
	providers   map[string]core.SearchProvider
	order       []string // registration order; first is the fallback default
	defaultName string
	preferred   string // engine used for important searches when registered
}

// NewGateway creates an empty gateway.
func NewGateway(logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gateway{
		logger:    logger,
		providers: make(map[string]core.SearchProvider),
	}
}

// Register adds a provider under its own name.
func (g *Gateway) Register(p core.SearchProvider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	name := p.Name()
	if _, exists := g.providers[name]; !exists {
		g.order = append(g.order, name)
	}
	g.providers[name] = p
}

// SetDefault marks the provider used when no engine is named.
func (g *Gateway) SetDefault(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.defaultName = name
}

// SetPreferred marks the higher-quality provider used for important searches.
func (g *Gateway) SetPreferred(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.preferred = name
}

// Engines returns the registered provider names in registration order.
func (g *Gateway) Engines() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Search runs a query against the named engine, or the default provider when
// engine is empty. Naming an unregistered engine is an error; a provider
// failure is logged and degrades to an empty result list.
func (g *Gateway) Search(ctx context.Context, query, engine string, maxResults int) ([]core.SearchResult, error) {
	provider, err := g.resolve(engine)
	if err != nil {
		return nil, err
	}

	results, err := provider.Search(ctx, query, maxResults)
	if err != nil {
		g.logger.Warn("search failed, continuing without results",
			"engine", provider.Name(),
			"query", query,
			"error", err,
		)
		return []core.SearchResult{}, nil
	}
	return results, nil
}

// SearchImportant routes the query to the preferred (higher-quality) provider
// when one is registered, falling back to the default otherwise.
func (g *Gateway) SearchImportant(ctx context.Context, query string, maxResults int) ([]core.SearchResult, error) {
	g.mu.RLock()
	preferred := g.preferred
	_, ok := g.providers[preferred]
	g.mu.RUnlock()

	if preferred != "" && ok {
		return g.Search(ctx, query, preferred, maxResults)
	}
	return g.Search(ctx, query, "", maxResults)
}

func (g *Gateway) resolve(engine string) (core.SearchProvider, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if engine != "" {
		p, ok := g.providers[engine]
		if !ok {
			return nil, core.ErrUnknownEngine(engine)
		}
		return p, nil
	}
	if g.defaultName != "" {
		if p, ok := g.providers[g.defaultName]; ok {
			return p, nil
		}
	}
	if len(g.order) > 0 {
		return g.providers[g.order[0]], nil
	}
	return nil, core.ErrUnknownEngine("(none registered)")
}
