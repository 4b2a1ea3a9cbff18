package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "PANEL",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "PANEL",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (PANEL_*)
// 3. Project config (.panel.yaml in current directory)
// 4. User config (~/.config/panel/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".panel")
		l.v.SetConfigType("yaml")

		// Project config takes precedence over user config
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "panel"))
		}
	}

	// Read config file (ignore not found)
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	// Log defaults
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	// Generation backend defaults
	l.v.SetDefault("ollama.base_url", "http://localhost:11434")
	l.v.SetDefault("ollama.model", "qwen2.5vl:7b")
	l.v.SetDefault("ollama.temperature", 0.7)
	l.v.SetDefault("ollama.max_tokens", 4096)
	l.v.SetDefault("ollama.timeout", "5m")

	// Search defaults
	l.v.SetDefault("search.default_engine", "sogou")
	l.v.SetDefault("search.max_results", 10)

	// Analysis defaults
	l.v.SetDefault("analysis.max_rounds", 3)
	l.v.SetDefault("analysis.consensus_threshold", 0.8)
	l.v.SetDefault("analysis.max_experts", 4)

	// Export defaults
	l.v.SetDefault("export.default_format", "markdown")
	l.v.SetDefault("export.output_dir", "./output")

	// Catalog defaults
	l.v.SetDefault("experts.dir", "./experts")
	l.v.SetDefault("experts.watch", false)

	// History defaults
	l.v.SetDefault("history.enabled", true)
	if home, err := os.UserHomeDir(); err == nil {
		l.v.SetDefault("history.path", filepath.Join(home, ".local", "share", "panel", "history.db"))
	} else {
		l.v.SetDefault("history.path", ".panel/history.db")
	}

	// Server defaults
	l.v.SetDefault("server.addr", "127.0.0.1:8787")
}
