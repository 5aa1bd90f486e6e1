package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/bfdconf/internal/ingest"
)

// errFindings reports that a check found configuration problems.
var errFindings = errors.New("configuration has errors")

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:     "check [file]",
	Aliases: []string{"c"},
	Short:   "Parse the bfd_instance blocks of a configuration",
	Long: `Parse the bfd_instance blocks of a keepalived configuration as one process
role and report the records that role derives along with every diagnostic.

The command exits non-zero when a field or block error was raised. With
--strict, advisories count as errors too.

Examples:
  bfdconf check                                  # Check the default file as the BFD process
  bfdconf check ./keepalived.conf --role vrrp    # Show the VRRP bindings
  bfdconf check --full -o json                   # Validate every keyword, JSON report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "treat advisories as errors")
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(args)
	if err != nil {
		return err
	}

	result, err := ingest.ParseFile(cmd.Context(), settings.File, ingest.Options{
		Role:   settings.ParsedRole(),
		Full:   settings.Full,
		Logger: newLogger(cmd, settings),
	})
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), settings.Output, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	failures := len(result.Errors())
	if checkStrict {
		failures += len(result.Advisories())
	}
	if failures > 0 {
		return fmt.Errorf("%w: %d finding(s) in %s", errFindings, failures, settings.File)
	}

	return nil
}
