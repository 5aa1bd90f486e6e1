// Package validation turns raw configuration tokens into checked values.
// Every function is pure: it returns the value or a reason for rejecting it
// and leaves reporting to the caller.
package validation

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotANumber means the token is not a clean base-10 integer.
	ErrNotANumber = errors.New("not a valid integer")
	// ErrOutOfRange means the integer falls outside the closed range.
	ErrOutOfRange = errors.New("value out of range")
)

// Range is a closed integer interval with an optional soft ceiling above
// which an accepted value is reported as unusual.
type Range struct {
	Min int64
	Max int64
	// Sensible is the soft ceiling; zero disables the advisory.
	Sensible int64
}

// String renders the range the way diagnostics quote it.
func (r Range) String() string {
	return fmt.Sprintf("[%d-%d]", r.Min, r.Max)
}

// Parse parses raw as a base-10 integer inside the range.
func (r Range) Parse(raw string) (int64, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s not in %s", ErrOutOfRange, raw, r)
		}
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	if value < r.Min || value > r.Max {
		return value, fmt.Errorf("%w: %d not in %s", ErrOutOfRange, value, r)
	}
	return value, nil
}

// AboveSensible reports whether an accepted value exceeds the soft ceiling.
func (r Range) AboveSensible(value int64) bool {
	return r.Sensible > 0 && value > r.Sensible
}

// Contains reports whether value lies inside the range.
func (r Range) Contains(value int64) bool {
	return value >= r.Min && value <= r.Max
}
