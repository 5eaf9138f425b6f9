package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the failure classes of the robustness engine
type ErrorCategory string

const (
	// Fatal: structurally invalid input, no report is produced
	ErrorCategoryPortfolioAnalysis ErrorCategory = "PORTFOLIO_ANALYSIS"

	// Isolated at the manager boundary, downgraded to a FAILED result entry
	ErrorCategoryTickerAnalysis ErrorCategory = "TICKER_ANALYSIS"

	// Recovered by counting: skipped trial or skipped perturbation draw
	ErrorCategoryDataInsufficient ErrorCategory = "DATA_INSUFFICIENT"
	ErrorCategoryInvalidParameter ErrorCategory = "INVALID_PARAMETER"
	ErrorCategoryTrialExecution   ErrorCategory = "TRIAL_EXECUTION"
)

// EngineError represents a categorized error with context
type EngineError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s in %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s in %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether this error must abort the whole portfolio run
func (e *EngineError) IsFatal() bool {
	return e.Category == ErrorCategoryPortfolioAnalysis
}

// IsRecoverable returns whether this error is absorbed by counting rather than raised
func (e *EngineError) IsRecoverable() bool {
	switch e.Category {
	case ErrorCategoryInvalidParameter, ErrorCategoryTrialExecution:
		return true
	default:
		return false
	}
}

// NewEngineError creates a new categorized engine error
func NewEngineError(category ErrorCategory, component, operation, message string) *EngineError {
	return &EngineError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with engine error context
func WrapError(err error, category ErrorCategory, component, operation string) *EngineError {
	if err == nil {
		return nil
	}

	return &EngineError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Taxonomy constructors

// NewDataInsufficientError signals a series too short to bootstrap or analyze
func NewDataInsufficientError(component, operation, message string) *EngineError {
	return NewEngineError(ErrorCategoryDataInsufficient, component, operation, message)
}

// NewInvalidParameterError signals a perturbation draw that never satisfied its constraints
func NewInvalidParameterError(component, operation, message string) *EngineError {
	return NewEngineError(ErrorCategoryInvalidParameter, component, operation, message)
}

// NewTrialExecutionError signals a single failed trial of the execution engine
func NewTrialExecutionError(component, operation string, err error) *EngineError {
	return WrapError(err, ErrorCategoryTrialExecution, component, operation)
}

// NewTickerAnalysisError signals an unexpected failure while analyzing one ticker
func NewTickerAnalysisError(component, operation string, err error) *EngineError {
	return WrapError(err, ErrorCategoryTickerAnalysis, component, operation)
}

// NewPortfolioAnalysisError signals structurally invalid portfolio input or configuration
func NewPortfolioAnalysisError(component, operation, message string) *EngineError {
	return NewEngineError(ErrorCategoryPortfolioAnalysis, component, operation, message)
}

// Category predicates, usable through wrapped chains

func hasCategory(err error, category ErrorCategory) bool {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Category == category
	}
	return false
}

func IsDataInsufficient(err error) bool {
	return hasCategory(err, ErrorCategoryDataInsufficient)
}

func IsInvalidParameter(err error) bool {
	return hasCategory(err, ErrorCategoryInvalidParameter)
}

func IsTrialExecution(err error) bool {
	return hasCategory(err, ErrorCategoryTrialExecution)
}

func IsTickerAnalysis(err error) bool {
	return hasCategory(err, ErrorCategoryTickerAnalysis)
}

func IsPortfolioAnalysis(err error) bool {
	return hasCategory(err, ErrorCategoryPortfolioAnalysis)
}

// Downgrade converts an arbitrary error into a ticker-analysis error at the
// manager boundary. Errors already carrying an engine category keep it.
func Downgrade(err error, component, operation string) *EngineError {
	if err == nil {
		return nil
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr
	}

	return NewTickerAnalysisError(component, operation, err)
}

// FailureTally accumulates recovered failures during one ticker analysis
type FailureTally struct {
	Total      int
	ByCategory map[ErrorCategory]int
	Samples    []string
	MaxSamples int
}

// NewFailureTally creates a tally keeping at most maxSamples reason strings
func NewFailureTally(maxSamples int) *FailureTally {
	return &FailureTally{
		ByCategory: make(map[ErrorCategory]int),
		Samples:    make([]string, 0, maxSamples),
		MaxSamples: maxSamples,
	}
}

// Record counts one recovered failure
func (t *FailureTally) Record(err *EngineError) {
	t.Total++
	t.ByCategory[err.Category]++

	if len(t.Samples) < t.MaxSamples {
		t.Samples = append(t.Samples, err.Error())
	}
}

// Rate returns the share of failures in a category
func (t *FailureTally) Rate(category ErrorCategory) float64 {
	if t.Total == 0 {
		return 0.0
	}
	return float64(t.ByCategory[category]) / float64(t.Total)
}

// Summary renders a short human-readable breakdown of the tally
func (t *FailureTally) Summary() string {
	if t.Total == 0 {
		return ""
	}

	summary := fmt.Sprintf("%d failed", t.Total)
	for _, category := range []ErrorCategory{
		ErrorCategoryTrialExecution,
		ErrorCategoryInvalidParameter,
		ErrorCategoryDataInsufficient,
	} {
		if n := t.ByCategory[category]; n > 0 {
			summary += fmt.Sprintf("; %s=%d", category, n)
		}
	}
	return summary
}
