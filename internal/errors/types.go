// Package errors defines the diagnostics produced while reading a
// configuration. A diagnostic is an error value carrying a severity that
// tells the reader how much of the configuration it invalidates.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Severity says how much of the configuration a diagnostic invalidates.
type Severity int

const (
	// SeverityAdvisory: the value was accepted but is unusual.
	SeverityAdvisory Severity = iota
	// SeverityField: one field was rejected and keeps its previous value.
	SeverityField
	// SeverityBlock: the current record is discarded along with the rest of its block.
	SeverityBlock
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityAdvisory:
		return "advisory"
	case SeverityField:
		return "field"
	case SeverityBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Diagnostic codes.
const (
	CodeNameTooLong       = "NAME_TOO_LONG"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeBadAddress        = "BAD_ADDRESS"
	CodeDuplicateNeighbor = "DUPLICATE_NEIGHBOR"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeNotANumber        = "NOT_A_NUMBER"
	CodeAboveSensible     = "ABOVE_SENSIBLE"
	CodeNoNeighbor        = "NO_NEIGHBOR"
	CodeFamilyMismatch    = "FAMILY_MISMATCH"
	CodeMaxHopsClamped    = "MAX_HOPS_CLAMPED"
	CodeDuplicateBinding  = "DUPLICATE_BINDING"
	CodeUnknownKeyword    = "UNKNOWN_KEYWORD"
	CodeMissingArgument   = "MISSING_ARGUMENT"
	CodeUnbalancedBlock   = "UNBALANCED_BLOCK"
	CodeNoOpenRecord      = "NO_OPEN_RECORD"
)

// ErrSkipBlock asks the reader to discard the rest of the current block
// without attaching a diagnostic.
var ErrSkipBlock = errors.New("skip block")

// ConfigError is a diagnostic raised while reading a configuration.
type ConfigError struct {
	Severity Severity
	Code     string
	Keyword  string
	Record   string
	Line     int
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var parts []string

	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d:", e.Line))
	}
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Record != "" {
		parts = append(parts, "instance "+e.Record+":")
	}
	if e.Keyword != "" {
		parts = append(parts, e.Keyword+":")
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is matches another ConfigError by code, or ErrSkipBlock for block errors.
func (e *ConfigError) Is(target error) bool {
	if target == ErrSkipBlock {
		return e.Severity == SeverityBlock
	}
	var t *ConfigError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}

	return false
}

// WithLine sets the source line.
func (e *ConfigError) WithLine(line int) *ConfigError {
	e.Line = line

	return e
}

// WithKeyword sets the keyword that produced the diagnostic.
func (e *ConfigError) WithKeyword(keyword string) *ConfigError {
	e.Keyword = keyword

	return e
}

// WithCause attaches an underlying error.
func (e *ConfigError) WithCause(cause error) *ConfigError {
	e.Cause = cause

	return e
}

// Advisory creates a non-fatal diagnostic for an accepted but unusual value.
func Advisory(code, record, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Severity: SeverityAdvisory,
		Code:     code,
		Record:   record,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Field creates a diagnostic for a rejected field.
func Field(code, record, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Severity: SeverityField,
		Code:     code,
		Record:   record,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Block creates a diagnostic that discards the current record.
func Block(code, record, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Severity: SeverityBlock,
		Code:     code,
		Record:   record,
		Message:  fmt.Sprintf(format, args...),
	}
}

// SeverityOf reports the severity of err. Errors that are not diagnostics
// are treated as field errors; ErrSkipBlock is a block error. A joined error
// takes the highest severity among its parts.
func SeverityOf(err error) Severity {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		highest := SeverityAdvisory
		for _, e := range multi.Unwrap() {
			if s := SeverityOf(e); s > highest {
				highest = s
			}
		}
		return highest
	}

	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Severity
	}
	if errors.Is(err, ErrSkipBlock) {
		return SeverityBlock
	}

	return SeverityField
}

// IsBlocking reports whether err discards the current record.
func IsBlocking(err error) bool {
	return err != nil && SeverityOf(err) == SeverityBlock
}

// IsAdvisory reports whether err is only an advisory.
func IsAdvisory(err error) bool {
	return err != nil && SeverityOf(err) == SeverityAdvisory
}

// HasCode reports whether err is a diagnostic with the given code.
func HasCode(err error, code string) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}

	return false
}
