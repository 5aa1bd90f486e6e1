package errors

import "errors"

// Collector accumulates diagnostics in the order they were raised. A
// collector belongs to a single parse and is not safe for concurrent use.
type Collector struct {
	diagnostics []*ConfigError
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{diagnostics: make([]*ConfigError, 0)}
}

// Add records err. Plain errors are wrapped as field diagnostics; a bare
// ErrSkipBlock carries no message and is not recorded.
func (c *Collector) Add(err error) *ConfigError {
	if err == nil || err == ErrSkipBlock {
		return nil
	}

	var ce *ConfigError
	if !errors.As(err, &ce) {
		ce = &ConfigError{Severity: SeverityField, Message: err.Error(), Cause: err}
	}
	c.diagnostics = append(c.diagnostics, ce)

	return ce
}

// All returns every diagnostic collected so far.
func (c *Collector) All() []*ConfigError {
	result := make([]*ConfigError, len(c.diagnostics))
	copy(result, c.diagnostics)
	return result
}

// Errors returns field and block diagnostics.
func (c *Collector) Errors() []*ConfigError {
	var out []*ConfigError
	for _, d := range c.diagnostics {
		if d.Severity != SeverityAdvisory {
			out = append(out, d)
		}
	}
	return out
}

// Advisories returns advisory diagnostics.
func (c *Collector) Advisories() []*ConfigError {
	var out []*ConfigError
	for _, d := range c.diagnostics {
		if d.Severity == SeverityAdvisory {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	return len(c.diagnostics)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// Join wraps errs into one error, discarding nils.
func Join(errs ...error) error { return errors.Join(errs...) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
