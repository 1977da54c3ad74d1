package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Diagnostic is a located error found while reading a builder declaration
type Diagnostic struct {
	Code    ErrorCode
	Message string
	Span    Span
	Hints   []string
}

// NewDiagnostic creates a diagnostic anchored at span
func NewDiagnostic(span Span, code ErrorCode, message string) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
	}
}

// Diagnosticf creates a diagnostic with a formatted message
func Diagnosticf(span Span, code ErrorCode, format string, args ...interface{}) *Diagnostic {
	return NewDiagnostic(span, code, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	if d.Span.IsEmpty() {
		return d.Message
	}
	return fmt.Sprintf("%s: %s", d.Span.String(), d.Message)
}

// ErrorCode returns the error code
func (d *Diagnostic) ErrorCode() ErrorCode {
	return d.Code
}

// Location returns the start of the diagnostic span
func (d *Diagnostic) Location() SourceLocation {
	return d.Span.Start
}

// Suggestions returns helpful suggestions for fixing the error
func (d *Diagnostic) Suggestions() []string {
	return d.Hints
}

// WithHint adds a suggestion to the diagnostic
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hints = append(d.Hints, hint)
	return d
}

// MultipleErrors represents an ordered set of diagnostics reported together
type MultipleErrors struct {
	Errors []*Diagnostic
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap exposes every diagnostic to errors.Is and errors.As
func (e *MultipleErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Diagnostics flattens err into its located diagnostics.
// Errors that carry no diagnostic are returned as a single unlocated one.
func Diagnostics(err error) []*Diagnostic {
	if err == nil {
		return nil
	}

	var multi *MultipleErrors
	if stderrors.As(err, &multi) {
		return append([]*Diagnostic(nil), multi.Errors...)
	}

	var diag *Diagnostic
	if stderrors.As(err, &diag) {
		return []*Diagnostic{diag}
	}

	code := UnknownErrorCode
	var builderErr BuilderError
	if stderrors.As(err, &builderErr) {
		code = builderErr.ErrorCode()
	}
	return []*Diagnostic{{Code: code, Message: err.Error()}}
}
