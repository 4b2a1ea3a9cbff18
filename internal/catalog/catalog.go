// Package catalog loads and selects expert personas from EXPERT.md documents.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

// nonMatchPenalty pushes experts that don't match the query behind every
// matching expert with priority below 100.
const nonMatchPenalty = 100

// Catalog is the expert catalog. The cache is populated lazily on first
// access; Reload fully replaces it. Reads may happen concurrently with an
// in-flight round, so the cache is guarded by a RWMutex.
type Catalog struct {
	dir    string
	logger *logging.Logger

	mu      sync.RWMutex
	byName  map[string]*core.Expert
	ordered []*core.Expert // ascending priority
	loaded  bool
}

// New creates a catalog backed by a directory of expert subdirectories,
// each holding an EXPERT.md document.
func New(dir string, logger *logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Catalog{
		dir:    dir,
		logger: logger,
	}
}

// ListAll returns every loaded expert sorted ascending by priority.
func (c *Catalog) ListAll() ([]*core.Expert, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.Expert, len(c.ordered))
	copy(out, c.ordered)
	return out, nil
}

// Get returns the expert with the given name.
func (c *Catalog) Get(name string) (*core.Expert, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byName[name]
	if !ok {
		return nil, core.ErrExpertNotFound(name)
	}
	return e, nil
}

// SelectRelevant returns up to limit experts ordered by relevance to the
// query. Experts whose domains or description match the query keep their
// priority; everyone else is pushed behind by a fixed penalty, so even an
// off-domain panel is filled up to the limit rather than left empty.
func (c *Catalog) SelectRelevant(query string, limit int) ([]*core.Expert, error) {
	all, err := c.ListAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, core.ErrNoExperts()
	}

	type scored struct {
		expert *core.Expert
		key    int
	}
	ranked := make([]scored, 0, len(all))
	for _, e := range all {
		key := e.Priority
		if !e.MatchesQuery(query) {
			key += nonMatchPenalty
		}
		ranked = append(ranked, scored{expert: e, key: key})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].key < ranked[j].key })

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	out := make([]*core.Expert, len(ranked))
	for i, s := range ranked {
		out[i] = s.expert
	}
	return out, nil
}

// Resolve looks up experts by explicit name, bypassing relevance scoring.
// Unknown names are dropped silently; an empty resulting set is an error.
func (c *Catalog) Resolve(names []string) ([]*core.Expert, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*core.Expert, 0, len(names))
	for _, name := range names {
		if e, ok := c.byName[name]; ok {
			out = append(out, e)
		} else {
			c.logger.Warn("unknown expert name skipped", "name", name)
		}
	}
	if len(out) == 0 {
		return nil, core.ErrNoExperts()
	}
	return out, nil
}

// Suggest returns expert names fuzzy-matching the given input, best first.
func (c *Catalog) Suggest(input string, max int) []string {
	all, err := c.ListAll()
	if err != nil {
		return nil
	}
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name
	}
	matches := fuzzy.Find(input, names)
	out := make([]string, 0, max)
	for _, m := range matches {
		out = append(out, m.Str)
		if len(out) == max {
			break
		}
	}
	return out
}

// Reload rescans the backing directory and replaces the cache in full.
// It takes the write lock, so a reload never races an in-flight selection.
func (c *Catalog) Reload() error {
	byName, ordered, err := c.scan()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.byName = byName
	c.ordered = ordered
	c.loaded = true
	c.mu.Unlock()
	return nil
}

func (c *Catalog) ensureLoaded() error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Reload()
}

// scan walks the experts directory. Per-document failures are logged and
// skipped; only a missing directory read aborts the scan.
func (c *Catalog) scan() (map[string]*core.Expert, []*core.Expert, error) {
	byName := make(map[string]*core.Expert)
	ordered := make([]*core.Expert, 0)

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn("experts directory does not exist", "dir", c.dir)
			return byName, ordered, nil
		}
		return nil, nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, entry.Name(), "EXPERT.md")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		expert, err := ParseExpertFile(path)
		if err != nil {
			c.logger.Warn("skipping invalid expert document", "path", path, "error", err)
			continue
		}
		if _, dup := byName[expert.Name]; dup {
			c.logger.Warn("duplicate expert name, keeping first", "name", expert.Name, "path", path)
			continue
		}
		byName[expert.Name] = expert
		ordered = append(ordered, expert)
	}

	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })
	return byName, ordered, nil
}
