package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("ollama.base_url = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.Model != "qwen2.5vl:7b" {
		t.Errorf("ollama.model = %q", cfg.Ollama.Model)
	}
	if cfg.Analysis.MaxRounds != 3 || cfg.Analysis.ConsensusThreshold != 0.8 || cfg.Analysis.MaxExperts != 4 {
		t.Errorf("analysis defaults = %+v", cfg.Analysis)
	}
	if cfg.Search.DefaultEngine != "sogou" || cfg.Search.MaxResults != 10 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Export.DefaultFormat != "markdown" {
		t.Errorf("export.default_format = %q", cfg.Export.DefaultFormat)
	}
	if !cfg.History.Enabled {
		t.Error("history should default to enabled")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ollama:
  model: llama3
analysis:
  max_rounds: 5
search:
  default_engine: tavily
  tavily_api_key: tvly-test
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().WithConfigFile(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ollama.Model != "llama3" {
		t.Errorf("ollama.model = %q", cfg.Ollama.Model)
	}
	if cfg.Analysis.MaxRounds != 5 {
		t.Errorf("analysis.max_rounds = %d", cfg.Analysis.MaxRounds)
	}
	if cfg.Search.DefaultEngine != "tavily" || cfg.Search.TavilyAPIKey != "tvly-test" {
		t.Errorf("search = %+v", cfg.Search)
	}
	// Untouched keys keep their defaults.
	if cfg.Analysis.ConsensusThreshold != 0.8 {
		t.Errorf("analysis.consensus_threshold = %v", cfg.Analysis.ConsensusThreshold)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PANEL_OLLAMA_MODEL", "phi3")
	t.Setenv("PANEL_ANALYSIS_MAX_ROUNDS", "2")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ollama.Model != "phi3" {
		t.Errorf("ollama.model = %q, want env override", cfg.Ollama.Model)
	}
	if cfg.Analysis.MaxRounds != 2 {
		t.Errorf("analysis.max_rounds = %d, want env override", cfg.Analysis.MaxRounds)
	}
}

func TestValidatorAcceptsDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := NewValidator().Validate(cfg); err != nil {
		t.Errorf("Validate(defaults): %v", err)
	}
}

func TestValidatorRejectsBadValues(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Log.Level = "verbose"
	cfg.Analysis.ConsensusThreshold = 1.5
	cfg.Ollama.Timeout = "not-a-duration"

	verr := NewValidator().Validate(cfg)
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	errs, ok := verr.(ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T", verr)
	}
	if len(errs) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(errs), errs)
	}
}

func TestOllamaTimeout(t *testing.T) {
	c := OllamaConfig{Timeout: "90s"}
	if got := c.OllamaTimeout(); got != 90*time.Second {
		t.Errorf("OllamaTimeout = %v", got)
	}
	broken := OllamaConfig{Timeout: "bogus"}
	if got := broken.OllamaTimeout(); got != 5*time.Minute {
		t.Errorf("OllamaTimeout fallback = %v", got)
	}
}
