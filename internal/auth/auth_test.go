package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/ghissues/internal/notify"
	"github.com/cchalm/ghissues/internal/prompt"
)

func newTestManager(answers ...prompt.Answer) (*Manager, *MemorySecretStore, *prompt.Scripted, *notify.Recorder) {
	secrets := NewMemorySecretStore()
	prompter := &prompt.Scripted{Answers: answers}
	notifier := &notify.Recorder{}
	return NewManager(secrets, prompter, notifier), secrets, prompter, notifier
}

func TestValidateToken(t *testing.T) {
	testCases := []struct {
		token   string
		wantErr string
	}{
		{token: "ghp_abc"},
		{token: "github_pat_abc"},
		{token: "", wantErr: "Token cannot be empty"},
		{token: "   ", wantErr: "Token cannot be empty"},
		{token: "gho_abc", wantErr: "Invalid token format. Should start with ghp_ or github_pat_"},
		{token: " ghp_abc", wantErr: "Invalid token format. Should start with ghp_ or github_pat_"},
	}

	for _, tc := range testCases {
		err := ValidateToken(tc.token)
		if tc.wantErr == "" {
			assert.NoError(t, err, "token %q", tc.token)
		} else {
			assert.EqualError(t, err, tc.wantErr, "token %q", tc.token)
		}
	}
}

func TestSetToken_Replaces(t *testing.T) {
	m, _, _, _ := newTestManager()
	ctx := context.Background()

	_, ok, err := m.GetToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetToken(ctx, "ghp_one"))
	require.NoError(t, m.SetToken(ctx, "ghp_two"))

	token, ok, err := m.GetToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_two", token)

	require.NoError(t, m.ClearToken(ctx))
	require.NoError(t, m.ClearToken(ctx))
	_, ok, err = m.GetToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromptForToken_RepromptsUntilValid(t *testing.T) {
	m, secrets, prompter, notifier := newTestManager(
		prompt.Answer{Value: "  "},
		prompt.Answer{Value: "not-a-token"},
		prompt.Answer{Value: "github_pat_123"},
	)
	ctx := context.Background()

	token, ok, err := m.PromptForToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "github_pat_123", token)

	stored, _, _ := secrets.Get(ctx, TokenKey)
	assert.Equal(t, "github_pat_123", stored)

	require.Len(t, prompter.Asked, 3)
	assert.True(t, prompter.Asked[0].Password)
	assert.Empty(t, prompter.Asked[0].Message)
	assert.Equal(t, "Token cannot be empty", prompter.Asked[1].Message)
	assert.Equal(t, "Invalid token format. Should start with ghp_ or github_pat_", prompter.Asked[2].Message)

	assert.Equal(t, []string{"GitHub token saved successfully"}, notifier.Messages(notify.LevelInfo))
}

func TestPromptForToken_CancelStoresNothing(t *testing.T) {
	m, secrets, _, notifier := newTestManager(
		prompt.Answer{Value: "bad"},
		prompt.Answer{Cancel: true},
	)
	ctx := context.Background()

	_, ok, err := m.PromptForToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, stored, _ := secrets.Get(ctx, TokenKey)
	assert.False(t, stored)
	assert.Empty(t, notifier.Notices())
}

func TestEnsureToken_StoredTokenNeverPrompts(t *testing.T) {
	m, secrets, prompter, _ := newTestManager(prompt.Answer{Value: "Sign In"})
	ctx := context.Background()
	require.NoError(t, secrets.Store(ctx, TokenKey, "ghp_stored"))

	token, ok, err := m.EnsureToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_stored", token)
	assert.Empty(t, prompter.Choices)
	assert.Empty(t, prompter.Asked)
}

func TestEnsureToken_SignIn(t *testing.T) {
	m, _, prompter, _ := newTestManager(
		prompt.Answer{Value: "Sign In"},
		prompt.Answer{Value: "ghp_new"},
	)

	token, ok, err := m.EnsureToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_new", token)
	assert.Equal(t, []string{"GitHub authentication required. Please sign in with your Personal Access Token."}, prompter.Choices)
	assert.Len(t, prompter.Asked, 1)
}

func TestEnsureToken_DeclineOrCancel(t *testing.T) {
	testCases := []struct {
		name    string
		answers []prompt.Answer
		asked   int
	}{
		{name: "choose cancel", answers: []prompt.Answer{{Value: "Cancel"}}, asked: 0},
		{name: "dismiss choice", answers: []prompt.Answer{{Cancel: true}}, asked: 0},
		{name: "dismiss token prompt", answers: []prompt.Answer{{Value: "Sign In"}, {Cancel: true}}, asked: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, secrets, prompter, _ := newTestManager(tc.answers...)
			ctx := context.Background()

			_, ok, err := m.EnsureToken(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Len(t, prompter.Choices, 1)
			assert.Len(t, prompter.Asked, tc.asked)

			_, stored, _ := secrets.Get(ctx, TokenKey)
			assert.False(t, stored)
		})
	}
}

func TestFileSecretStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "secrets.json")
	ctx := context.Background()
	store := NewFileSecretStore(path)

	_, ok, err := store.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting from a store that was never written is fine
	require.NoError(t, store.Delete(ctx, TokenKey))

	require.NoError(t, store.Store(ctx, TokenKey, "ghp_file"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh store reads what the first one wrote
	value, ok, err := NewFileSecretStore(path).Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_file", value)

	require.NoError(t, store.Delete(ctx, TokenKey))
	_, ok, err = store.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
