package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cchalm/ghissues/internal/tree"
	"github.com/cchalm/ghissues/internal/ui"
)

var refreshCmd = &cobra.Command{
	Use:     "refresh",
	Aliases: []string{"list", "ls"},
	Short:   "Fetch and list the repository's issues",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := app.ensureAuthenticated(app.ctx)
		if err != nil || !ok {
			return err
		}
		if err := listIssues(tree.NewProvider(app.issues, app.notifier)); err != nil {
			return err
		}
		app.notifier.Info("Issues refreshed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

// listIssues loads the tree and prints it. Load failures have already been shown by the provider
func listIssues(provider *tree.Provider) error {
	if err := provider.LoadIssues(app.ctx); err != nil {
		return ErrReported
	}
	return ui.PrintTree(app.stdout, provider)
}
