package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/analysis"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/config"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/export"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/history"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/llm"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/quote"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/retrieval"
)

// app bundles the wired components a command needs.
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	catalog    *catalog.Catalog
	gateway    *retrieval.Gateway
	client     *llm.OllamaClient
	controller *analysis.Controller
	exports    *export.Registry
	store      *history.Store // nil when history is disabled

	closers []func() error
}

// buildApp loads config and wires the full component graph. withHistory
// controls whether the SQLite store is opened.
func buildApp(withHistory bool) (*app, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader = loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	a := &app{
		cfg:     cfg,
		logger:  logger,
		catalog: catalog.New(cfg.Experts.Dir, logger),
		exports: export.NewRegistry(),
	}

	a.gateway = retrieval.NewGateway(logger)
	a.gateway.Register(retrieval.NewSogouProvider())
	if cfg.Search.TavilyAPIKey != "" {
		a.gateway.Register(retrieval.NewTavilyProvider(cfg.Search.TavilyAPIKey))
		a.gateway.SetPreferred("tavily")
	}
	a.gateway.SetDefault(cfg.Search.DefaultEngine)

	a.client = llm.NewOllamaClient(cfg.Ollama.BaseURL, cfg.Ollama.Model, logger,
		llm.WithTemperature(cfg.Ollama.Temperature),
		llm.WithTimeout(cfg.Ollama.OllamaTimeout()),
	)

	quotes := quote.NewProvider(logger)
	a.controller = analysis.NewController(a.catalog, a.gateway, a.client, quotes, logger)

	if withHistory && cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.Path)
		if err != nil {
			logger.Warn("run history unavailable", "path", cfg.History.Path, "error", err)
		} else {
			a.store = store
			a.closers = append(a.closers, store.Close)
		}
	}

	if cfg.Experts.Watch {
		w, err := catalog.Watch(a.catalog, logger)
		if err != nil {
			logger.Warn("expert watcher unavailable", "dir", cfg.Experts.Dir, "error", err)
		} else {
			a.closers = append(a.closers, w.Close)
		}
	}

	return a, nil
}

// Close releases app resources.
func (a *app) Close() {
	for _, fn := range a.closers {
		_ = fn()
	}
}

// analysisOptions maps the loaded config to controller options.
func (a *app) analysisOptions() analysis.Options {
	return analysis.Options{
		MaxRounds:          a.cfg.Analysis.MaxRounds,
		ConsensusThreshold: a.cfg.Analysis.ConsensusThreshold,
		MaxExperts:         a.cfg.Analysis.MaxExperts,
		MaxSearchResults:   a.cfg.Search.MaxResults,
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n已收到中断信号，正在停止...")
		cancel()
	}()

	return ctx, cancel
}
