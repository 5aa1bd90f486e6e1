package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/bfdconf/internal/ingest"
	"github.com/conneroisu/bfdconf/internal/role"
)

var rolesCmd = &cobra.Command{
	Use:     "roles [file]",
	Aliases: []string{"r"},
	Short:   "Compare what every process role derives from a configuration",
	Long: `Parse the configuration once per process role and show the records each
role derives. Bindings whose session the BFD process rejected are listed as
orphans: the tracking process will wait for a session that never starts.

Examples:
  bfdconf roles
  bfdconf roles ./keepalived.conf -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoles,
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

type roleView struct {
	Role       string   `json:"role" yaml:"role"`
	Records    []string `json:"records" yaml:"records"`
	Errors     int      `json:"errors" yaml:"errors"`
	Advisories int      `json:"advisories" yaml:"advisories"`
	Orphans    []string `json:"orphans,omitempty" yaml:"orphans,omitempty"`
}

type rolesView struct {
	Source string     `json:"source" yaml:"source"`
	Digest string     `json:"digest" yaml:"digest"`
	Roles  []roleView `json:"roles" yaml:"roles"`
}

func runRoles(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(settings.File)
	if err != nil {
		return fmt.Errorf("opening configuration: %w", err)
	}

	results, err := ingest.ParseAll(cmd.Context(), data, ingest.Options{
		Source: settings.File,
		Logger: newLogger(cmd, settings),
	})
	if err != nil {
		return err
	}

	view := newRolesView(settings.File, results)
	w := cmd.OutOrStdout()
	return encode(w, settings.Output, view, func() error {
		fmt.Fprintf(w, "%s (digest %s)\n", view.Source, view.Digest)
		for _, rv := range view.Roles {
			fmt.Fprintf(w, "  %-8s %d record(s), %d error(s), %d advisory(ies): %s\n",
				rv.Role, len(rv.Records), rv.Errors, rv.Advisories, strings.Join(rv.Records, " "))
			if len(rv.Orphans) > 0 {
				fmt.Fprintf(w, "  %-8s orphaned: %s\n", "", strings.Join(rv.Orphans, " "))
			}
		}
		return nil
	})
}

// newRolesView summarizes one result per role. Orphans are computed against
// the BFD process's sessions.
func newRolesView(source string, results []*ingest.Result) rolesView {
	view := rolesView{Source: source}

	sessions := make(map[string]struct{})
	for _, r := range results {
		if r.Role == role.BFD {
			for _, name := range r.SessionNames() {
				sessions[name] = struct{}{}
			}
		}
	}

	for _, r := range results {
		view.Digest = digestString(r.Digest)
		rv := roleView{
			Role:       r.Role.String(),
			Records:    r.Names(),
			Errors:     len(r.Errors()),
			Advisories: len(r.Advisories()),
		}
		if !r.Role.BuildsSessions() {
			for _, name := range rv.Records {
				if _, ok := sessions[name]; !ok {
					rv.Orphans = append(rv.Orphans, name)
				}
			}
		}
		view.Roles = append(view.Roles, rv)
	}

	return view
}
