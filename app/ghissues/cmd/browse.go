package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cchalm/ghissues/internal/panel"
	"github.com/cchalm/ghissues/internal/tree"
	"github.com/cchalm/ghissues/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse issues interactively",
	Long: `Opens the interactive browser: the issue tree on the left and the selected issue on
the right, where it can be commented on, edited, closed, reopened and labelled.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ok, err := app.ensureAuthenticated(app.ctx)
	if err != nil || !ok {
		return err
	}

	var title string
	if rc, configured := app.settings.RepoConfig(); configured {
		title = rc.String()
	} else {
		app.notifier.Error(`Repository not configured. Please run "ghissues configure"`)
		return ErrReported
	}

	host := ui.NewHost()
	provider := tree.NewProvider(app.issues, host)
	panels := panel.NewRegistry(func() *panel.Manager {
		return panel.NewManager(app.ctx, app.issues, host.Panels(app.out), host, app.out)
	})
	defer panels.Close()

	program := tea.NewProgram(
		ui.NewApp(app.ctx, title, provider, panels.Get(), host),
		tea.WithAltScreen(),
		tea.WithContext(app.ctx),
	)
	host.Attach(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}
