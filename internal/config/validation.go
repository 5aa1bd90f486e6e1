package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/conneroisu/bfdconf/internal/logging"
	"github.com/conneroisu/bfdconf/internal/role"
	"github.com/conneroisu/bfdconf/internal/validation"
)

// OutputFormats lists the accepted report formats.
var OutputFormats = []string{"text", "json", "yaml"}

// ValidationError represents a settings validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of settings validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field: field, Value: value, Message: msg, Suggestions: suggestions,
	})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{
		Field: field, Value: value, Message: msg, Suggestions: suggestions,
	})
}

// ValidateWithDetails checks every setting and collects all problems.
func ValidateWithDetails(s *Settings) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if _, err := role.Parse(s.Role); err != nil {
		result.addError("role", s.Role, err.Error(),
			"use one of: "+strings.Join(role.Names(), ", "))
	}

	if !contains(OutputFormats, s.Output) {
		result.addError("output", s.Output, "unsupported output format",
			"use one of: "+strings.Join(OutputFormats, ", "))
	}

	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		result.addError("log.level", s.Log.Level, err.Error(), "use debug, info, warn or error")
	}
	if s.Log.Format != "text" && s.Log.Format != "json" {
		result.addError("log.format", s.Log.Format, "unsupported log format", "use text or json")
	}

	validateFile(s.File, result)

	if s.Watch.Debounce < 0 {
		result.addError("watch.debounce", s.Watch.Debounce, "debounce must not be negative")
	} else if s.Watch.Debounce > 0 && s.Watch.Debounce.Milliseconds() < 10 {
		result.addWarning("watch.debounce", s.Watch.Debounce,
			"very short debounce may parse a file mid-write", "use at least 100ms")
	}

	if s.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(s.Metrics.Address); err != nil {
			result.addError("metrics.address", s.Metrics.Address, "address must be host:port", "e.g. :9283")
		}
	}

	if s.Full && s.Role != "" && s.Role != DefaultRole {
		result.addWarning("full", s.Full,
			"a full parse makes every keyword live, so the role only labels the result")
	}

	return result
}

func validateFile(path string, result *ValidationResult) {
	if err := validation.ValidatePath(path); err != nil {
		result.addError("file", path, err.Error())
		return
	}

	if filepath.Ext(path) != ".conf" && filepath.Ext(path) != "" {
		result.addWarning("file", path, "keepalived configurations usually end in .conf")
	}
}

// validateSettings returns the first validation error, if any.
func validateSettings(s *Settings) error {
	result := ValidateWithDetails(s)
	if result.HasErrors() {
		first := result.Errors[0]
		return &first
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
