package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/cchalm/ghissues/internal/auth"
	"github.com/cchalm/ghissues/internal/config"
	"github.com/cchalm/ghissues/internal/diag"
	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/notify"
	"github.com/cchalm/ghissues/internal/panel"
	"github.com/cchalm/ghissues/internal/prompt"
	"github.com/cchalm/ghissues/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// ErrReported is returned by commands whose failure has already been shown to the user
var ErrReported = errors.New("command failed")

// env holds the services every command shares
type env struct {
	ctx       context.Context
	cfg       config.Config
	settings  *config.Settings
	out       *diag.Channel
	telemetry *telemetry.Provider
	notifier  notify.Notifier
	prompter  prompt.Prompter
	auth      *auth.Manager
	issues    *githubpkg.IssueService
	panels    *panel.Registry
	stdout    io.Writer
}

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

// storedToken returns the token to use without prompting: GITHUB_TOKEN if set, else the stored credential
func (e *env) storedToken(ctx context.Context) (string, bool, error) {
	if e.cfg.GitHubToken != "" {
		return e.cfg.GitHubToken, true, nil
	}
	return e.auth.GetToken(ctx)
}

// activate gives the issue client a token if one is available without asking. It reports whether the client is now
// authenticated
func (e *env) activate(ctx context.Context) (bool, error) {
	token, ok, err := e.storedToken(ctx)
	if err != nil || !ok {
		return false, err
	}
	e.issues.SetToken(token)
	return true, nil
}

// ensureAuthenticated is activate, falling back to the interactive sign-in flow
func (e *env) ensureAuthenticated(ctx context.Context) (bool, error) {
	if ok, err := e.activate(ctx); err != nil || ok {
		return ok, err
	}
	token, ok, err := e.auth.EnsureToken(ctx)
	if err != nil || !ok {
		return false, err
	}
	e.issues.SetToken(token)
	return true, nil
}

// report shows err to the user and marks it as shown
func (e *env) report(err error) error {
	e.notifier.Error(err.Error())
	return fmt.Errorf("%w: %w", ErrReported, err)
}

func parseIssueNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid issue number %q", arg)
	}
	return n, nil
}
