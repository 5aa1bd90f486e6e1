package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/bfdconf/internal/version"
)

var versionShort bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for bfdconf including the version number,
git commit, build time, Go version, and target platform.

Examples:
  bfdconf version              # Show version
  bfdconf version --short      # Show version and commit only
  bfdconf version -o json      # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.GetBuildInfo()
	w := cmd.OutOrStdout()

	return encode(w, viper.GetString("output"), info, func() error {
		if versionShort {
			fmt.Fprintln(w, info.Short())
			return nil
		}

		fmt.Fprintf(w, "bfdconf %s", info.Short())
		if info.Dirty {
			fmt.Fprint(w, " (dirty)")
		}
		fmt.Fprintln(w)
		if !info.BuildTime.IsZero() {
			fmt.Fprintf(w, "Built: %s\n", info.BuildTime.UTC().Format("2006-01-02 15:04:05 UTC"))
		}
		fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
		fmt.Fprintf(w, "Platform: %s\n", info.Platform)
		return nil
	})
}
