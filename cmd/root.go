// Package cmd provides the bfdconf command-line interface.
//
// Settings come from several sources with clear precedence:
//  1. Command-line flags (--role, --file, etc.) - highest priority
//  2. Individual environment variables (BFDCONF_ROLE, BFDCONF_LOG_LEVEL, etc.)
//  3. The settings file (.bfdconf.yml, or --config / BFDCONF_CONFIG_FILE)
//  4. Built-in defaults - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/bfdconf/internal/config"
	"github.com/conneroisu/bfdconf/internal/logging"
	"github.com/conneroisu/bfdconf/internal/role"
	"github.com/conneroisu/bfdconf/internal/validation"
)

var (
	cfgFile    string
	roleFlag   = role.BFD
	outputFlag = outputFormat(config.DefaultOutput)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bfdconf",
	Short: "Read BFD instances from a keepalived configuration",
	Long: `bfdconf reads the bfd_instance blocks of a keepalived configuration the
way each keepalived process does: the BFD process builds sessions, the VRRP
and checker processes build the bindings that track them.

Quick Start:
  bfdconf check                       Validate the configuration as the BFD process
  bfdconf check --role vrrp           Show what the VRRP process tracks
  bfdconf check --full                Validate every keyword
  bfdconf roles                       Compare what every process derives
  bfdconf keywords --role checker     List the keywords a role acts on
  bfdconf watch                       Re-read the configuration on change`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "settings file (default is .bfdconf.yml, can also use BFDCONF_CONFIG_FILE env var)")
	flags.Var(&roleFlag, "role", "process role to parse as ("+strings.Join(role.Names(), ", ")+")")
	flags.Bool("full", false, "make every keyword live regardless of role")
	flags.StringP("file", "f", config.DefaultFile, "keepalived configuration file")
	flags.VarP(&outputFlag, "output", "o", "output format ("+strings.Join(config.OutputFormats, ", ")+")")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (text, json)")

	_ = viper.BindPFlag("role", flags.Lookup("role"))
	_ = viper.BindPFlag("full", flags.Lookup("full"))
	_ = viper.BindPFlag("file", flags.Lookup("file"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

// initConfig locates the settings file. An explicit --config wins over
// BFDCONF_CONFIG_FILE, which wins over .bfdconf.yml in the working directory.
// A missing file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bfdconf")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadSettings loads settings and applies a positional file argument.
func loadSettings(args []string) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(args) > 0 {
		if err := validation.ValidatePath(args[0]); err != nil {
			return nil, fmt.Errorf("invalid file argument: %w", err)
		}
		settings.File = args[0]
	}

	return settings, nil
}

func newLogger(cmd *cobra.Command, settings *config.Settings) logging.Logger {
	return logging.NewLogger(settings.LoggerConfig(cmd.ErrOrStderr()))
}
