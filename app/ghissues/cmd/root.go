package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cchalm/ghissues/internal/auth"
	"github.com/cchalm/ghissues/internal/config"
	"github.com/cchalm/ghissues/internal/diag"
	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/notify"
	"github.com/cchalm/ghissues/internal/panel"
	"github.com/cchalm/ghissues/internal/prompt"
	"github.com/cchalm/ghissues/internal/telemetry"
	"github.com/cchalm/ghissues/internal/ui"
)

var flags struct {
	verbose    bool
	accessible bool
}

// app is the process's wiring, built before any command runs
var app *env

var rootCmd = &cobra.Command{
	Use:   "ghissues",
	Short: "Browse, view and comment on GitHub issues from the terminal",
	Long: `ghissues lists the issues of one configured GitHub repository, shows an issue with its
comment thread, and relays comments, edits, state changes and labels back to GitHub.

Run "ghissues signin" and "ghissues configure" once, then "ghissues browse".`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	defer teardown()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Write diagnostic output to stderr instead of the log file")
	rootCmd.PersistentFlags().BoolVar(&flags.accessible, "accessible", false, "Use plain line-based prompts")
}

func setup(cmd *cobra.Command, _ []string) error {
	ctx := setupContext()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var out *diag.Channel
	if flags.verbose {
		out = diag.New(diag.ChannelName, os.Stderr)
	} else {
		out, err = diag.Open(diag.ChannelName, cfg.LogPath())
		if err != nil {
			return err
		}
	}
	if envErr != nil {
		out.AppendLine("No .env file found, using environment variables")
	}

	settings, err := config.LoadSettings(cfg.SettingsPath())
	if err != nil {
		return err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.TelemetryConfig{
		Enabled:  cfg.TelemetryEnabled,
		Endpoint: cfg.TelemetryEndpoint,
		Insecure: cfg.TelemetryInsecure,
		Version:  versionInfo.version,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}

	notifier := notify.NewConsole()
	notifier.Out = cmd.OutOrStdout()
	notifier.ErrOut = cmd.ErrOrStderr()

	prompter := prompt.Form{Accessible: flags.accessible}
	service := githubpkg.NewIssueService(settings, out, githubpkg.WithTracer(tp.Tracer("ghissues/github")))

	app = &env{
		ctx:       ctx,
		cfg:       cfg,
		settings:  settings,
		out:       out,
		telemetry: tp,
		notifier:  notifier,
		prompter:  prompter,
		auth:      auth.NewManager(auth.NewFileSecretStore(cfg.SecretsPath()), prompter, notifier),
		issues:    service,
		stdout:    cmd.OutOrStdout(),
	}
	app.panels = panel.NewRegistry(func() *panel.Manager {
		return panel.NewManager(ctx, service, ui.NewConsole(app.stdout, out), notifier, out)
	})
	return nil
}

func teardown() {
	if app == nil {
		return
	}
	app.panels.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.telemetry.Shutdown(ctx); err != nil {
		app.out.AppendLine("Failed to shut down telemetry: %v", err)
	}
	_ = app.out.Close()
}
