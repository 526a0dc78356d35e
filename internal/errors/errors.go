// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrNoData         = errors.New("no data available")
	ErrQuoteFailed    = errors.New("quote request failed")
	ErrDatabaseError  = errors.New("database error")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrTimeout        = errors.New("operation timed out")
)

// ConfigurationError represents an invalid parameter supplied at model
// construction. It is always surfaced immediately, never clamped.
type ConfigurationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field string, value interface{}, message string) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DomainError represents an arithmetic singularity encountered while
// pricing, such as a vanishing volatility term. It is surfaced as a
// distinguishable failure instead of propagating NaN or Inf.
type DomainError struct {
	Model    string
	Quantity string
	Message  string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error [%s] %s: %s", e.Model, e.Quantity, e.Message)
}

// NewDomainError creates a new DomainError.
func NewDomainError(model, quantity, message string) *DomainError {
	return &DomainError{
		Model:    model,
		Quantity: quantity,
		Message:  message,
	}
}

// QuoteError represents an error from the market data provider.
type QuoteError struct {
	Symbol  string
	Message string
	Err     error
}

func (e *QuoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quote error [%s]: %s: %v", e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("quote error [%s]: %s", e.Symbol, e.Message)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// NewQuoteError creates a new QuoteError.
func NewQuoteError(symbol, message string, err error) *QuoteError {
	return &QuoteError{
		Symbol:  symbol,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
