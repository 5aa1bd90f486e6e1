package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/conneroisu/bfdconf/internal/config"
	"github.com/conneroisu/bfdconf/internal/role"
)

var (
	_ pflag.Value = (*outputFormat)(nil)
	_ pflag.Value = (*role.Role)(nil)
)

// outputFormat is a report format flag value.
type outputFormat string

// String implements pflag.Value.
func (o *outputFormat) String() string {
	return string(*o)
}

// Set implements pflag.Value.
func (o *outputFormat) Set(raw string) error {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, format := range config.OutputFormats {
		if raw == format {
			*o = outputFormat(raw)
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (supported: %s)", raw, strings.Join(config.OutputFormats, ", "))
}

// Type implements pflag.Value.
func (o *outputFormat) Type() string {
	return "format"
}
