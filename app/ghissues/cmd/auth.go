package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cchalm/ghissues/internal/tree"
)

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with a GitHub personal access token",
	Long: `Prompts for a personal access token (ghp_... or github_pat_...) and stores it in the
ghissues config directory. When a repository is configured its issues are listed afterwards.`,
	Args: cobra.NoArgs,
	RunE: runSignIn,
}

var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the stored GitHub token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.auth.ClearToken(app.ctx); err != nil {
			return err
		}
		app.notifier.Info("Signed out of GitHub")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signInCmd)
	rootCmd.AddCommand(signOutCmd)
}

func runSignIn(cmd *cobra.Command, args []string) error {
	token, ok, err := app.auth.PromptForToken(app.ctx)
	if err != nil || !ok {
		return err
	}
	app.issues.SetToken(token)

	if _, configured := app.settings.RepoConfig(); configured {
		return listIssues(tree.NewProvider(app.issues, app.notifier))
	}
	return nil
}
