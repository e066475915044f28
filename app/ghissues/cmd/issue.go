package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/panel"
	"github.com/cchalm/ghissues/internal/prompt"
)

var openCmd = &cobra.Command{
	Use:   "open <number>",
	Short: "Show an issue and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIssueNumber(args[0])
		if err != nil {
			return err
		}
		ok, err := app.ensureAuthenticated(app.ctx)
		if err != nil || !ok {
			return err
		}
		if err := app.panels.Get().ShowIssue(app.ctx, githubpkg.Issue{Number: n}); err != nil {
			return ErrReported
		}
		return nil
	},
}

var createFlags struct {
	title string
	body  string
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue",
	Long: `Creates an issue, prompting for the title and description unless given as flags.
A blank title cancels. The new issue is shown once created.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var commentCmd = &cobra.Command{
	Use:   "comment <number> <body>",
	Short: "Comment on an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssueRequest(args[0], func(n int) (panel.Request, error) {
			if strings.TrimSpace(args[1]) == "" {
				return nil, fmt.Errorf("comment body cannot be empty")
			}
			return panel.AddComment{IssueNumber: n, Body: args[1]}, nil
		})
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <number>",
	Short: "Close an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssueRequest(args[0], func(n int) (panel.Request, error) {
			return panel.CloseIssue{IssueNumber: n}, nil
		})
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <number>",
	Short: "Reopen a closed issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssueRequest(args[0], func(n int) (panel.Request, error) {
			return panel.ReopenIssue{IssueNumber: n}, nil
		})
	},
}

var editFlags struct {
	title string
	body  string
}

var editCmd = &cobra.Command{
	Use:   "edit <number>",
	Short: "Change an issue's title or description",
	Long: `Changes the title, the description, or both. Only the flags given are sent, so
anything not mentioned stays as it is on GitHub.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssueRequest(args[0], func(n int) (panel.Request, error) {
			var updates panel.Updates
			if cmd.Flags().Changed("title") {
				updates.Title = &editFlags.title
			}
			if cmd.Flags().Changed("body") {
				updates.Body = &editFlags.body
			}
			if updates.Title == nil && updates.Body == nil {
				return nil, fmt.Errorf("nothing to change, pass --title or --body")
			}
			return panel.UpdateIssue{IssueNumber: n, Updates: updates}, nil
		})
	},
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Add or remove issue labels",
}

var labelAddCmd = &cobra.Command{
	Use:   "add <number> <label>",
	Short: "Add a label to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssueRequest(args[0], func(n int) (panel.Request, error) {
			return panel.AddLabel{IssueNumber: n, Label: args[1]}, nil
		})
	},
}

var labelRemoveCmd = &cobra.Command{
	Use:     "remove <number> <label>",
	Aliases: []string{"rm"},
	Short:   "Remove a label from an issue",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssueRequest(args[0], func(n int) (panel.Request, error) {
			return panel.RemoveLabel{IssueNumber: n, Label: args[1]}, nil
		})
	},
}

func init() {
	createCmd.Flags().StringVar(&createFlags.title, "title", "", "Issue title")
	createCmd.Flags().StringVar(&createFlags.body, "body", "", "Issue description")

	editCmd.Flags().StringVar(&editFlags.title, "title", "", "New title")
	editCmd.Flags().StringVar(&editFlags.body, "body", "", "New description")

	labelCmd.AddCommand(labelAddCmd, labelRemoveCmd)
	rootCmd.AddCommand(openCmd, createCmd, commentCmd, closeCmd, reopenCmd, editCmd, labelCmd)
}

// runIssueRequest sends a panel request for the issue named by arg through the controller, which reports the outcome
func runIssueRequest(arg string, build func(n int) (panel.Request, error)) error {
	n, err := parseIssueNumber(arg)
	if err != nil {
		return err
	}
	req, err := build(n)
	if err != nil {
		return err
	}

	ok, err := app.ensureAuthenticated(app.ctx)
	if err != nil || !ok {
		return err
	}
	if err := app.panels.Get().HandleRequest(app.ctx, req); err != nil {
		return ErrReported
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	ok, err := app.ensureAuthenticated(app.ctx)
	if err != nil || !ok {
		return err
	}

	title := createFlags.title
	if strings.TrimSpace(title) == "" {
		answer, ok, err := app.prompter.Ask(app.ctx, prompt.Input{
			Title:       "Enter issue title",
			Placeholder: "Issue title",
		})
		if err != nil || !ok {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			return nil
		}
		title = answer
	}

	body := createFlags.body
	if !cmd.Flags().Changed("body") {
		answer, ok, err := app.prompter.Ask(app.ctx, prompt.Input{
			Title:       "Enter issue description (optional)",
			Placeholder: "Issue description",
		})
		if err != nil {
			return err
		}
		if ok {
			body = answer
		}
	}

	issue, err := app.issues.CreateIssue(app.ctx, title, body)
	if err != nil {
		return app.report(err)
	}
	app.notifier.Info(fmt.Sprintf("Issue #%d created successfully", issue.Number))

	if err := app.panels.Get().ShowIssue(app.ctx, issue); err != nil {
		return ErrReported
	}
	return nil
}
