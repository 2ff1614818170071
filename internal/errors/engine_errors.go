package errors

import (
	"errors"
	"fmt"
)

// Category classifies engine errors by how the scheduler should react
type Category string

const (
	// Errors that skip the affected symbol for one cycle and retry next cycle
	CategoryData Category = "DATA"

	// Errors that discard the candidate with no state change
	CategoryValidation Category = "VALIDATION"
	CategoryRiskInput  Category = "RISK_INPUT"

	// Execution errors; open failures discard, close failures retry next sweep
	CategoryExecution Category = "EXECUTION"

	// Recovered cycle-level failures; never fatal to the process
	CategoryLoop Category = "LOOP"

	// Startup-time errors that should stop the engine
	CategoryConfig Category = "CONFIG"
)

// Sentinel errors for the failure modes the engine branches on.
var (
	ErrDataUnavailable  = errors.New("market data unavailable")
	ErrValidationFailed = errors.New("risk validation rejected opportunity")
	ErrExecutionFailed  = errors.New("execution gateway rejected order")
	ErrInvalidRiskInput = errors.New("invalid risk input: zero price risk")
)

// EngineError carries the category and originating component alongside the
// underlying cause so the scheduler's failure policy stays in one place.
type EngineError struct {
	Category  Category
	Component string
	Operation string
	Symbol    string
	Err       error
}

func (e *EngineError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("[%s:%s] %s %s: %v", e.Category, e.Component, e.Operation, e.Symbol, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Component, e.Operation, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the next cycle should reattempt the operation.
func (e *EngineError) Retryable() bool {
	switch e.Category {
	case CategoryData, CategoryExecution, CategoryLoop:
		return true
	default:
		return false
	}
}

// Wrap attaches engine context to an error. Returns nil on nil input so
// call sites can wrap unconditionally.
func Wrap(err error, category Category, component, operation string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{
		Category:  category,
		Component: component,
		Operation: operation,
		Err:       err,
	}
}

// WithSymbol tags the error with the symbol it relates to.
func (e *EngineError) WithSymbol(symbol string) *EngineError {
	e.Symbol = symbol
	return e
}

// NewDataError marks a market-data failure: skip this symbol, retry next cycle.
func NewDataError(component, operation, symbol string, err error) *EngineError {
	return Wrap(fmt.Errorf("%w: %w", ErrDataUnavailable, err), CategoryData, component, operation).WithSymbol(symbol)
}

// NewExecutionError marks a gateway rejection.
func NewExecutionError(component, operation, symbol string, err error) *EngineError {
	return Wrap(fmt.Errorf("%w: %w", ErrExecutionFailed, err), CategoryExecution, component, operation).WithSymbol(symbol)
}

// IsDataUnavailable reports whether err stems from a failed market-data call.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

// IsExecutionFailure reports whether err stems from a gateway rejection.
func IsExecutionFailure(err error) bool {
	return errors.Is(err, ErrExecutionFailed)
}
