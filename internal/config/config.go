package config

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	Search   SearchConfig   `mapstructure:"search"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Export   ExportConfig   `mapstructure:"export"`
	Experts  ExpertsConfig  `mapstructure:"experts"`
	History  HistoryConfig  `mapstructure:"history"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OllamaConfig configures the local generation backend.
type OllamaConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     string  `mapstructure:"timeout"`
}

// SearchConfig configures retrieval providers.
type SearchConfig struct {
	DefaultEngine string `mapstructure:"default_engine"`
	TavilyAPIKey  string `mapstructure:"tavily_api_key"`
	MaxResults    int    `mapstructure:"max_results"`
}

// AnalysisConfig configures the iteration controller.
type AnalysisConfig struct {
	MaxRounds          int     `mapstructure:"max_rounds"`
	ConsensusThreshold float64 `mapstructure:"consensus_threshold"`
	MaxExperts         int     `mapstructure:"max_experts"`
}

// ExportConfig configures report export.
type ExportConfig struct {
	DefaultFormat string `mapstructure:"default_format"`
	OutputDir     string `mapstructure:"output_dir"`
}

// ExpertsConfig configures the expert catalog.
type ExpertsConfig struct {
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

// HistoryConfig configures run persistence.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}
