// Package errs defines the failure kinds surfaced by the pairs engine.
package errs

import "fmt"

// InsufficientDataError reports a series shorter than an operation requires.
type InsufficientDataError struct {
	Op   string
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: have %d points, need %d", e.Op, e.Have, e.Need)
}

// NewInsufficientData builds an InsufficientDataError for op.
func NewInsufficientData(op string, have, need int) *InsufficientDataError {
	return &InsufficientDataError{Op: op, Have: have, Need: need}
}

// DegenerateVarianceError reports a zero variance where a ratio needs it as denominator.
// Index is the position in the series, or -1 when the whole input is degenerate.
type DegenerateVarianceError struct {
	Op    string
	Index int
}

func (e *DegenerateVarianceError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: zero variance", e.Op)
	}
	return fmt.Sprintf("%s: zero variance at index %d", e.Op, e.Index)
}

// NewDegenerateVariance builds a DegenerateVarianceError for op at index.
func NewDegenerateVariance(op string, index int) *DegenerateVarianceError {
	return &DegenerateVarianceError{Op: op, Index: index}
}

// InvalidConfigError reports a configuration field outside its allowed domain.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// NewInvalidConfig builds an InvalidConfigError.
func NewInvalidConfig(field, reason string) *InvalidConfigError {
	return &InvalidConfigError{Field: field, Reason: reason}
}
