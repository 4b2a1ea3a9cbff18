// Package export renders finished reports into publishing-specific formats.
// Formatters are registered by name behind an explicit capability interface;
// they carry no orchestration logic.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// Registry holds the available exporters.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]core.Exporter
}

// NewRegistry creates a registry pre-populated with the built-in formats.
func NewRegistry() *Registry {
	r := &Registry{exporters: make(map[string]core.Exporter)}
	r.Register(&MarkdownExporter{})
	r.Register(&NewsExporter{})
	r.Register(&WeChatExporter{})
	r.Register(&XiaohongshuExporter{})
	return r
}

// Register adds an exporter under its own name.
func (r *Registry) Register(e core.Exporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[e.Name()] = e
}

// Get returns the exporter for a format name.
func (r *Registry) Get(name string) (core.Exporter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exporters[name]
	if !ok {
		return nil, fmt.Errorf("export format %q not registered", name)
	}
	return e, nil
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.exporters))
	for name := range r.exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export renders content with the named format.
func (r *Registry) Export(content, format string, meta map[string]string) (string, error) {
	e, err := r.Get(format)
	if err != nil {
		return "", err
	}
	return e.Export(content, meta)
}

// WriteFile writes exported content atomically so a crash mid-export never
// leaves a truncated report behind.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	if runtime.GOOS == "windows" {
		// renameio does not support Windows; plain write-then-rename.
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	}
	return renameio.WriteFile(path, []byte(content), 0o644)
}
