// Package auth manages the single GitHub personal access token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cchalm/ghissues/internal/notify"
	"github.com/cchalm/ghissues/internal/prompt"
)

// TokenKey is the secret storage key holding the raw token
const TokenKey = "github-token"

var tokenPrefixes = []string{"ghp_", "github_pat_"}

const (
	choiceSignIn = "Sign In"
	choiceCancel = "Cancel"
)

var (
	errEmptyToken  = errors.New("Token cannot be empty")
	errTokenFormat = errors.New("Invalid token format. Should start with ghp_ or github_pat_")
)

// ValidateToken checks that a token looks like a classic or fine-grained personal access token. It is advisory; the
// token is not verified against GitHub
func ValidateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errEmptyToken
	}
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(token, prefix) {
			return nil
		}
	}
	return errTokenFormat
}

// Manager is the credential store. At most one token exists; setting a new one replaces it
type Manager struct {
	secrets  SecretStore
	prompter prompt.Prompter
	notifier notify.Notifier
}

func NewManager(secrets SecretStore, prompter prompt.Prompter, notifier notify.Notifier) *Manager {
	return &Manager{
		secrets:  secrets,
		prompter: prompter,
		notifier: notifier,
	}
}

// GetToken returns the stored token, or false if there is none
func (m *Manager) GetToken(ctx context.Context) (string, bool, error) {
	token, ok, err := m.secrets.Get(ctx, TokenKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	if !ok || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

func (m *Manager) SetToken(ctx context.Context, token string) error {
	if err := m.secrets.Store(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing when nothing is stored is not an error
func (m *Manager) ClearToken(ctx context.Context) error {
	if err := m.secrets.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// PromptForToken asks for a token until the user enters a valid one or cancels. Only a valid token is stored, and it
// is stored exactly as entered
func (m *Manager) PromptForToken(ctx context.Context) (string, bool, error) {
	in := prompt.Input{
		Title:       "Enter your GitHub Personal Access Token",
		Placeholder: "ghp_...",
		Password:    true,
		Validate:    ValidateToken,
	}

	for {
		token, ok, err := m.prompter.Ask(ctx, in)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		if err := ValidateToken(token); err != nil {
			in.Message = err.Error()
			continue
		}

		if err := m.SetToken(ctx, token); err != nil {
			return "", false, err
		}
		m.notifier.Info("GitHub token saved successfully")
		return token, true, nil
	}
}

// EnsureToken returns the stored token. Without one, it asks whether to sign in and prompts only if the user agrees
func (m *Manager) EnsureToken(ctx context.Context) (string, bool, error) {
	token, ok, err := m.GetToken(ctx)
	if err != nil || ok {
		return token, ok, err
	}

	choice, ok, err := m.prompter.Choose(ctx,
		"GitHub authentication required. Please sign in with your Personal Access Token.",
		choiceSignIn,
		choiceCancel,
	)
	if err != nil {
		return "", false, err
	}
	if !ok || choice != choiceSignIn {
		return "", false, nil
	}

	return m.PromptForToken(ctx)
}
