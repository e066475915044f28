package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v72/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/ghissues/internal/auth"
	"github.com/cchalm/ghissues/internal/config"
	"github.com/cchalm/ghissues/internal/diag"
	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/notify"
	"github.com/cchalm/ghissues/internal/panel"
	"github.com/cchalm/ghissues/internal/prompt"
	"github.com/cchalm/ghissues/internal/ui"
)

// fixture is the process wiring with every outside collaborator faked: a scripted prompter, recorded notices, an
// in-memory secret store and a fake GitHub serving mux
type fixture struct {
	notifier *notify.Recorder
	prompter *prompt.Scripted
	stdout   *bytes.Buffer
	hits     atomic.Int32
}

func newFixture(t *testing.T, mux *http.ServeMux, answers ...prompt.Answer) *fixture {
	t.Helper()
	f := &fixture{
		notifier: &notify.Recorder{},
		prompter: &prompt.Scripted{Answers: answers},
		stdout:   &bytes.Buffer{},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	ctx := context.Background()
	cfg := config.Config{Dir: t.TempDir()}
	settings, err := config.LoadSettings(filepath.Join(cfg.Dir, "config.yaml"))
	require.NoError(t, err)

	out := diag.Discard()
	service := githubpkg.NewIssueService(settings, out, githubpkg.WithClientFactory(func(string) *github.Client {
		client := github.NewClient(nil)
		client.BaseURL = baseURL
		return client
	}))

	app = &env{
		ctx:      ctx,
		cfg:      cfg,
		settings: settings,
		out:      out,
		notifier: f.notifier,
		prompter: f.prompter,
		auth:     auth.NewManager(auth.NewMemorySecretStore(), f.prompter, f.notifier),
		issues:   service,
		stdout:   f.stdout,
	}
	app.panels = panel.NewRegistry(func() *panel.Manager {
		return panel.NewManager(ctx, service, ui.NewConsole(f.stdout, out), f.notifier, out)
	})

	t.Cleanup(func() {
		app.panels.Close()
		app = nil
		configureFlags.owner, configureFlags.repo = "", ""
		createFlags.title, createFlags.body = "", ""
	})
	return f
}

func (f *fixture) signedIn(t *testing.T) {
	t.Helper()
	require.NoError(t, app.auth.SetToken(app.ctx, "ghp_test"))
}

func (f *fixture) configured(t *testing.T) {
	t.Helper()
	require.NoError(t, app.settings.SetRepository("acme", "widgets"))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func issueJSON(number int, title string) map[string]any {
	return map[string]any{
		"number":     number,
		"title":      title,
		"state":      "open",
		"user":       map[string]any{"login": "octocat"},
		"created_at": "2024-01-02T03:04:05Z",
		"updated_at": "2024-01-02T03:04:05Z",
	}
}

func listMux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets/issues", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []any{issueJSON(1, "Crash on start")})
	})
	return mux
}

func answer(value string) prompt.Answer {
	return prompt.Answer{Value: value}
}

func TestConfigure_BlankOwnerAborts(t *testing.T) {
	f := newFixture(t, http.NewServeMux(), answer("   "))

	require.NoError(t, runConfigure(configureCmd, nil))

	assert.Len(t, f.prompter.Asked, 1, "the repository is never asked for")
	_, ok := app.settings.RepoConfig()
	assert.False(t, ok)
	assert.Empty(t, f.notifier.Notices())
}

func TestConfigure_BlankRepoAborts(t *testing.T) {
	f := newFixture(t, http.NewServeMux(), answer("acme"), answer(""))

	require.NoError(t, runConfigure(configureCmd, nil))

	assert.Len(t, f.prompter.Asked, 2)
	_, ok := app.settings.RepoConfig()
	assert.False(t, ok)
	assert.Empty(t, f.notifier.Notices())
}

func TestConfigure_OffersSignInWithoutToken(t *testing.T) {
	f := newFixture(t, http.NewServeMux(), answer("acme"), answer("widgets"), prompt.Answer{Cancel: true})

	require.NoError(t, runConfigure(configureCmd, nil))

	rc, ok := app.settings.RepoConfig()
	require.True(t, ok)
	assert.Equal(t, "acme/widgets", rc.String())
	assert.Equal(t, []string{"Repository set to acme/widgets"}, f.notifier.Messages(notify.LevelInfo))
	assert.Equal(t, []string{"Sign in to GitHub to view issues"}, f.prompter.Choices)
	assert.Zero(t, f.hits.Load())
}

func TestConfigure_SignInThenLists(t *testing.T) {
	f := newFixture(t, listMux(t), answer("acme"), answer("widgets"), answer("Sign In"), answer("ghp_new"))

	require.NoError(t, runConfigure(configureCmd, nil))

	assert.Equal(t, []string{"Repository set to acme/widgets", "GitHub token saved successfully"}, f.notifier.Messages(notify.LevelInfo))
	assert.Contains(t, f.stdout.String(), "Crash on start")
}

func TestConfigure_ListsWhenSignedIn(t *testing.T) {
	f := newFixture(t, listMux(t), answer("acme"), answer("widgets"))
	f.signedIn(t)

	require.NoError(t, runConfigure(configureCmd, nil))

	assert.Empty(t, f.prompter.Choices)
	assert.Contains(t, f.stdout.String(), "#1")
}

func TestAskUnlessSet_KeepsAnswerAsTyped(t *testing.T) {
	f := newFixture(t, http.NewServeMux(), answer(" acme "), answer(" \t"))

	value, ok, err := askUnlessSet("", prompt.Input{Title: "owner"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, " acme ", value)

	_, ok, err = askUnlessSet("", prompt.Input{Title: "owner"})
	require.NoError(t, err)
	assert.False(t, ok)

	value, ok, err = askUnlessSet("octo", prompt.Input{Title: "owner"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "octo", value)
	assert.Len(t, f.prompter.Asked, 2, "a flag value is not asked for")
}

func TestCreate_BlankTitleAborts(t *testing.T) {
	f := newFixture(t, http.NewServeMux(), answer("  "))
	f.signedIn(t)
	f.configured(t)

	require.NoError(t, runCreate(createCmd, nil))

	assert.Len(t, f.prompter.Asked, 1, "the description is never asked for")
	assert.Zero(t, f.hits.Load())
	assert.Empty(t, f.notifier.Notices())
}

func TestCreate_Success(t *testing.T) {
	var created githubpkg.Issue
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/widgets/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		writeJSON(t, w, http.StatusCreated, issueJSON(7, created.Title))
	})
	mux.HandleFunc("GET /repos/acme/widgets/issues/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, issueJSON(7, created.Title))
	})
	mux.HandleFunc("GET /repos/acme/widgets/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []any{})
	})

	f := newFixture(t, mux, answer("Crash on start "), answer("Steps to reproduce"))
	f.signedIn(t)
	f.configured(t)

	require.NoError(t, runCreate(createCmd, nil))

	assert.Equal(t, "Crash on start ", created.Title, "the title is sent as typed")
	assert.Equal(t, "Steps to reproduce", created.GetBody())
	assert.Equal(t, []string{"Issue #7 created successfully"}, f.notifier.Messages(notify.LevelInfo))
	assert.Contains(t, f.stdout.String(), "#7: Crash on start")
}

func TestCreate_FailureReportedOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/widgets/issues", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{"message": "Validation Failed"})
	})
	createFlags.title = "Crash"
	f := newFixture(t, mux, answer(""))
	f.signedIn(t)
	f.configured(t)

	err := runCreate(createCmd, nil)
	require.ErrorIs(t, err, ErrReported)
	assert.Equal(t, []string{"Failed to create issue: Validation Failed"}, f.notifier.Messages(notify.LevelError))
}

func TestRefresh_FailureReported(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets/issues", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"message": "Bad credentials"})
	})
	f := newFixture(t, mux)
	f.signedIn(t)
	f.configured(t)

	err := refreshCmd.RunE(refreshCmd, nil)
	require.ErrorIs(t, err, ErrReported)

	assert.Equal(t, []string{"Failed to load issues: Failed to fetch issues: Bad credentials"}, f.notifier.Messages(notify.LevelError))
	assert.NotContains(t, f.notifier.Messages(notify.LevelInfo), "Issues refreshed")
	assert.Empty(t, f.stdout.String())
}

func TestRefresh_Success(t *testing.T) {
	f := newFixture(t, listMux(t))
	f.signedIn(t)
	f.configured(t)

	require.NoError(t, refreshCmd.RunE(refreshCmd, nil))

	assert.Contains(t, f.stdout.String(), "Crash on start")
	assert.Equal(t, []string{"Issues refreshed"}, f.notifier.Messages(notify.LevelInfo))
}

func TestSignIn_ListsOnlyWhenConfigured(t *testing.T) {
	f := newFixture(t, listMux(t), answer("ghp_first"), answer("ghp_second"))

	require.NoError(t, runSignIn(signInCmd, nil))
	assert.Zero(t, f.hits.Load(), "no repository, nothing to list")
	token, ok, err := app.auth.GetToken(app.ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ghp_first", token)

	f.configured(t)
	require.NoError(t, runSignIn(signInCmd, nil))
	assert.Equal(t, int32(1), f.hits.Load())
	assert.Contains(t, f.stdout.String(), "Crash on start")
}
