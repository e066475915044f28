package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cchalm/ghissues/internal/prompt"
	"github.com/cchalm/ghissues/internal/tree"
)

const choiceSignIn = "Sign In"

var configureFlags struct {
	owner string
	repo  string
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the repository whose issues are shown",
	Long: `Sets the repository owner and name, prompting for whichever is not given as a flag.
Leaving either prompt blank cancels without changing anything.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&configureFlags.owner, "owner", "", "Repository owner (user or organization)")
	configureCmd.Flags().StringVar(&configureFlags.repo, "repo", "", "Repository name")

	rootCmd.AddCommand(configureCmd)
}

// askUnlessSet returns value if non-blank, otherwise asks. A blank answer counts as cancelling; any other answer is
// used as typed
func askUnlessSet(value string, in prompt.Input) (string, bool, error) {
	if strings.TrimSpace(value) != "" {
		return value, true, nil
	}
	answer, ok, err := app.prompter.Ask(app.ctx, in)
	if err != nil || !ok {
		return "", false, err
	}
	return answer, strings.TrimSpace(answer) != "", nil
}

func runConfigure(cmd *cobra.Command, args []string) error {
	owner, ok, err := askUnlessSet(configureFlags.owner, prompt.Input{
		Title:       "Enter repository owner (username or organization)",
		Placeholder: "e.g., microsoft",
	})
	if err != nil || !ok {
		return err
	}

	repo, ok, err := askUnlessSet(configureFlags.repo, prompt.Input{
		Title:       "Enter repository name",
		Placeholder: "e.g., vscode",
	})
	if err != nil || !ok {
		return err
	}

	if err := app.settings.SetRepository(owner, repo); err != nil {
		return err
	}
	app.notifier.Info("Repository set to " + owner + "/" + repo)

	authenticated, err := app.activate(app.ctx)
	if err != nil {
		return err
	}
	if !authenticated {
		choice, ok, err := app.prompter.Choose(app.ctx, "Sign in to GitHub to view issues", choiceSignIn)
		if err != nil || !ok || choice != choiceSignIn {
			return err
		}
		return runSignIn(cmd, nil)
	}

	return listIssues(tree.NewProvider(app.issues, app.notifier))
}
