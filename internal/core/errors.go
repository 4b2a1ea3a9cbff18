package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatExecution  ErrorCategory = "execution"  // Runtime failure
	ErrCatRetrieval  ErrorCategory = "retrieval"  // Search provider failure
	ErrCatParse      ErrorCategory = "parse"      // Model output parsing
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatNetwork    ErrorCategory = "network"    // Network connectivity
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// Error codes used across the orchestrator.
const (
	CodeNoExperts      = "no_experts"
	CodeExpertFailed   = "expert_analysis_failed"
	CodeUnknownEngine  = "unknown_engine"
	CodeRetrieval      = "retrieval_failed"
	CodeGapParse       = "gap_parse_failed"
	CodeGeneration     = "generation_failed"
	CodeExpertNotFound = "expert_not_found"
)

// DomainError is a structured error from the orchestration layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on category and code so callers can compare against sentinel
// constructors without caring about message or cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrNoExperts reports that expert selection produced an empty set.
// Fatal to the run; there is no partial result.
func ErrNoExperts() *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     CodeNoExperts,
		Message:  "no experts available for this question",
	}
}

// ErrExpertAnalysisFailed reports that a single expert's generation call
// failed, which invalidates the whole round.
func ErrExpertAnalysisFailed(expert string, cause error) *DomainError {
	e := &DomainError{
		Category:  ErrCatExecution,
		Code:      CodeExpertFailed,
		Message:   fmt.Sprintf("analysis by expert %q failed", expert),
		Retryable: true,
		Cause:     cause,
	}
	return e.WithDetail("expert", expert)
}

// ErrUnknownEngine reports a search call that named an unregistered provider.
func ErrUnknownEngine(engine string) *DomainError {
	e := &DomainError{
		Category: ErrCatNotFound,
		Code:     CodeUnknownEngine,
		Message:  fmt.Sprintf("search engine %q is not registered", engine),
	}
	return e.WithDetail("engine", engine)
}

// ErrExpertNotFound reports a catalog lookup miss.
func ErrExpertNotFound(name string) *DomainError {
	e := &DomainError{
		Category: ErrCatNotFound,
		Code:     CodeExpertNotFound,
		Message:  fmt.Sprintf("expert %q not found", name),
	}
	return e.WithDetail("expert", name)
}

// FailedExpert extracts the expert name from an ErrExpertAnalysisFailed chain.
func FailedExpert(err error) (string, bool) {
	var derr *DomainError
	if !errors.As(err, &derr) || derr.Code != CodeExpertFailed {
		return "", false
	}
	name, _ := derr.Details["expert"].(string)
	return name, name != ""
}
