package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{errors: make(ValidationErrors, 0)}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateOllama(&cfg.Ollama)
	v.validateSearch(&cfg.Search)
	v.validateAnalysis(&cfg.Analysis)
	v.validateExport(&cfg.Export)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(field string, value interface{}, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", cfg.Level, "must be one of debug, info, warn, error")
	}
	switch cfg.Format {
	case "auto", "text", "json":
	default:
		v.addError("log.format", cfg.Format, "must be one of auto, text, json")
	}
}

func (v *Validator) validateOllama(cfg *OllamaConfig) {
	if cfg.BaseURL == "" {
		v.addError("ollama.base_url", cfg.BaseURL, "must not be empty")
	}
	if cfg.Model == "" {
		v.addError("ollama.model", cfg.Model, "must not be empty")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		v.addError("ollama.temperature", cfg.Temperature, "must be in [0, 2]")
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			v.addError("ollama.timeout", cfg.Timeout, "must be a valid duration")
		}
	}
}

func (v *Validator) validateSearch(cfg *SearchConfig) {
	if cfg.MaxResults <= 0 {
		v.addError("search.max_results", cfg.MaxResults, "must be positive")
	}
}

func (v *Validator) validateAnalysis(cfg *AnalysisConfig) {
	if cfg.MaxRounds < 1 {
		v.addError("analysis.max_rounds", cfg.MaxRounds, "must be at least 1")
	}
	if cfg.ConsensusThreshold < 0 || cfg.ConsensusThreshold > 1 {
		v.addError("analysis.consensus_threshold", cfg.ConsensusThreshold, "must be in [0, 1]")
	}
	if cfg.MaxExperts < 1 {
		v.addError("analysis.max_experts", cfg.MaxExperts, "must be at least 1")
	}
}

func (v *Validator) validateExport(cfg *ExportConfig) {
	if cfg.OutputDir == "" {
		v.addError("export.output_dir", cfg.OutputDir, "must not be empty")
	}
}

// OllamaTimeout returns the parsed generation timeout.
func (c *OllamaConfig) OllamaTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
