package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/bfdconf/internal/role"
)

var keywordsCmd = &cobra.Command{
	Use:     "keywords",
	Aliases: []string{"k"},
	Short:   "List the bfd_instance keywords a role acts on",
	Long: `List every bfd_instance sub-keyword and whether it is live for a role.
Keywords that are not live are accepted and ignored, so a role never reports
a diagnostic for a value another process owns.

Examples:
  bfdconf keywords --role vrrp
  bfdconf keywords --full -o yaml`,
	Args: cobra.NoArgs,
	RunE: runKeywords,
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
}

type keywordsView struct {
	Role     string   `json:"role" yaml:"role"`
	Full     bool     `json:"full" yaml:"full"`
	Sessions bool     `json:"sessions" yaml:"sessions"`
	VRRP     bool     `json:"vrrp" yaml:"vrrp"`
	Checker  bool     `json:"checker" yaml:"checker"`
	Live     []string `json:"live" yaml:"live"`
	Ignored  []string `json:"ignored" yaml:"ignored"`
}

func runKeywords(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(nil)
	if err != nil {
		return err
	}

	r := settings.ParsedRole()
	set := role.SelectKeywordSet(r, settings.Full)

	view := keywordsView{
		Role:     r.String(),
		Full:     settings.Full,
		Sessions: set.Sessions,
		VRRP:     set.VRRP,
		Checker:  set.Checker,
		Live:     []string{},
		Ignored:  []string{},
	}
	for _, kw := range role.Universe() {
		if set.Live(kw) {
			view.Live = append(view.Live, kw)
		} else {
			view.Ignored = append(view.Ignored, kw)
		}
	}

	w := cmd.OutOrStdout()
	return encode(w, settings.Output, view, func() error {
		fmt.Fprintf(w, "%s keywords (role %s)\n", role.Root, view.Role)
		for _, kw := range view.Live {
			fmt.Fprintf(w, "  %-12s live\n", kw)
		}
		for _, kw := range view.Ignored {
			fmt.Fprintf(w, "  %-12s ignored\n", kw)
		}
		return nil
	})
}
