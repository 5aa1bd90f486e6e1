// Package config provides process settings for bfdconf using Viper for
// loading from files, environment variables, and command-line flags.
//
// Settings cover which role to parse as, the keepalived configuration file to
// read, how to report results, and the logging, watch, and metrics options of
// long-running use. Environment variables use the BFDCONF_ prefix.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/bfdconf/internal/logging"
	"github.com/conneroisu/bfdconf/internal/role"
)

// EnvPrefix is the environment variable prefix for every setting.
const EnvPrefix = "BFDCONF"

// Default values.
const (
	DefaultRole             = "bfd"
	DefaultFile             = "/etc/keepalived/keepalived.conf"
	DefaultOutput           = "text"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultDebounce         = 300 * time.Millisecond
	DefaultMetricsAddress   = ":9283"
	DefaultMetricsNamespace = "bfdconf"
)

type Settings struct {
	Role    string          `yaml:"role" mapstructure:"role"`
	Full    bool            `yaml:"full" mapstructure:"full"`
	File    string          `yaml:"file" mapstructure:"file"`
	Output  string          `yaml:"output" mapstructure:"output"`
	Log     LogSettings     `yaml:"log" mapstructure:"log"`
	Watch   WatchSettings   `yaml:"watch" mapstructure:"watch"`
	Metrics MetricsSettings `yaml:"metrics" mapstructure:"metrics"`
}

type LogSettings struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type WatchSettings struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

type MetricsSettings struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Address   string `yaml:"address" mapstructure:"address"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("role", DefaultRole)
	v.SetDefault("full", false)
	v.SetDefault("file", DefaultFile)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("watch.debounce", DefaultDebounce)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", DefaultMetricsAddress)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
}

// BindEnv makes every key readable from BFDCONF_* variables, with dots in
// keys replaced by underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads settings from the global viper instance.
func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads settings from v, fills in defaults for anything unset, and
// validates the result.
func LoadFrom(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle booleans set via viper (workaround for flags bound after unmarshal)
	if v.IsSet("full") {
		settings.Full = v.GetBool("full")
	}
	if v.IsSet("metrics.enabled") {
		settings.Metrics.Enabled = v.GetBool("metrics.enabled")
	}

	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &settings, nil
}

func applyDefaults(s *Settings) {
	if s.Role == "" {
		s.Role = DefaultRole
	}
	if s.File == "" {
		s.File = DefaultFile
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.Log.Level == "" {
		s.Log.Level = DefaultLogLevel
	}
	if s.Log.Format == "" {
		s.Log.Format = DefaultLogFormat
	}
	if s.Watch.Debounce == 0 {
		s.Watch.Debounce = DefaultDebounce
	}
	if s.Metrics.Address == "" {
		s.Metrics.Address = DefaultMetricsAddress
	}
	if s.Metrics.Namespace == "" {
		s.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// ParsedRole returns the configured role.
func (s *Settings) ParsedRole() role.Role {
	r, err := role.Parse(s.Role)
	if err != nil {
		return role.BFD
	}
	return r
}

// LoggerConfig returns the logger configuration for out.
func (s *Settings) LoggerConfig(out io.Writer) *logging.LoggerConfig {
	level, err := logging.ParseLevel(s.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	if out == nil {
		out = os.Stderr
	}
	return &logging.LoggerConfig{
		Level:     level,
		Format:    s.Log.Format,
		Output:    out,
		Component: "bfdconf",
	}
}
