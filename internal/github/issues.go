// Package github wraps the GitHub REST API for the single repository ghissues is configured against.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/go-github/v72/github"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/cchalm/ghissues/internal/config"
	"github.com/cchalm/ghissues/internal/diag"
	"github.com/cchalm/ghissues/internal/transport"
)

// listPageSize caps ListIssues. Only one page is ever fetched
const listPageSize = 100

var (
	ErrNotAuthenticated = errors.New("GitHub client not initialized. Please sign in first.")
	ErrNotConfigured    = errors.New("Repository not configured")
)

// Error is a failed call to GitHub. Its message reads "Failed to <action>: <upstream message>"
type Error struct {
	Action string
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Failed to %s: %s", e.Action, upstreamMessage(e.Cause))
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// upstreamMessage prefers the message GitHub put in the response body over go-github's full request description
func upstreamMessage(err error) string {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Message != "" {
		return ghErr.Message
	}
	return err.Error()
}

// RepoConfigSource supplies the repository target. It is read on every call so reconfiguration takes effect
// immediately
type RepoConfigSource interface {
	RepoConfig() (config.RepoConfig, bool)
}

// ClientFactory builds an authenticated go-github client for a token
type ClientFactory func(token string) *github.Client

// IssueService talks to GitHub's issues API
type IssueService struct {
	repos     RepoConfigSource
	out       *diag.Channel
	tracer    trace.Tracer
	newClient ClientFactory

	mu     sync.RWMutex
	client *github.Client
}

type Option func(*IssueService)

// WithClientFactory replaces the default token-authenticated client construction
func WithClientFactory(f ClientFactory) Option {
	return func(s *IssueService) { s.newClient = f }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *IssueService) { s.tracer = tracer }
}

// NewIssueService creates an IssueService. It has no client until SetToken is called
func NewIssueService(repos RepoConfigSource, out *diag.Channel, opts ...Option) *IssueService {
	s := &IssueService{
		repos:  repos,
		out:    out,
		tracer: noop.NewTracerProvider().Tracer("ghissues/github"),
	}
	s.newClient = func(token string) *github.Client {
		return NewClient(context.Background(), token, out)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient creates a go-github client authenticated with a static token, logging every request to out
func NewClient(ctx context.Context, token string, out *diag.Channel) *github.Client {
	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: tokenSource,
			Base:   transport.WithDiagnostics(nil, out),
		},
	}
	return github.NewClient(httpClient)
}

// SetToken replaces the client with one authenticated by token
func (s *IssueService) SetToken(token string) {
	client := s.newClient(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

func (s *IssueService) ensureClient() (*github.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.client == nil {
		return nil, ErrNotAuthenticated
	}
	return s.client, nil
}

// prepare returns the client and repository for a call, or fails without touching the network
func (s *IssueService) prepare() (*github.Client, config.RepoConfig, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, config.RepoConfig{}, err
	}
	rc, ok := s.repos.RepoConfig()
	if !ok {
		return nil, config.RepoConfig{}, ErrNotConfigured
	}
	return client, rc, nil
}

func (s *IssueService) startSpan(ctx context.Context, name string, rc config.RepoConfig, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("github.repository", rc.String()))
	return s.tracer.Start(ctx, "github."+name, trace.WithAttributes(attrs...))
}

// fail records err on the span and the diagnostic channel and wraps it for the user
func (s *IssueService) fail(span trace.Span, action string, logPrefix string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, upstreamMessage(err))
	s.out.AppendLine("%s: %s", logPrefix, upstreamMessage(err))
	return &Error{Action: action, Cause: err}
}

// ListIssues returns one page of up to 100 issues in the given state. An empty state means all issues
func (s *IssueService) ListIssues(ctx context.Context, state IssueState) ([]Issue, error) {
	if state == "" {
		state = StateAll
	}

	client, rc, err := s.prepare()
	if errors.Is(err, ErrNotConfigured) {
		return nil, fmt.Errorf(`%w. Please run "ghissues configure"`, err)
	} else if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "ListIssues", rc, attribute.String("github.issue_state", string(state)))
	defer span.End()

	s.out.AppendLine("Fetching %s issues for %s...", state, rc)

	opts := &github.IssueListByRepoOptions{
		State:       string(state),
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	ghIssues, _, err := client.Issues.ListByRepo(ctx, rc.Owner, rc.Repo, opts)
	if err != nil {
		return nil, s.fail(span, "fetch issues", "Error fetching issues", err)
	}

	issues := make([]Issue, 0, len(ghIssues))
	for _, gi := range ghIssues {
		issues = append(issues, fromGithubIssue(gi))
	}

	s.out.AppendLine("Fetched %d issues", len(issues))
	span.SetAttributes(attribute.Int("github.issue_count", len(issues)))
	return issues, nil
}

// GetIssue fetches an issue and its comments concurrently. Both requests must succeed
func (s *IssueService) GetIssue(ctx context.Context, issueNumber int) (IssueWithComments, error) {
	client, rc, err := s.prepare()
	if err != nil {
		return IssueWithComments{}, err
	}

	ctx, span := s.startSpan(ctx, "GetIssue", rc, attribute.Int("github.issue_number", issueNumber))
	defer span.End()

	s.out.AppendLine("Fetching issue #%d...", issueNumber)

	var (
		ghIssue    *github.Issue
		ghComments []*github.IssueComment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ghIssue, _, err = client.Issues.Get(gctx, rc.Owner, rc.Repo, issueNumber)
		return err
	})
	g.Go(func() error {
		var err error
		opts := &github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{PerPage: listPageSize},
		}
		ghComments, _, err = client.Issues.ListComments(gctx, rc.Owner, rc.Repo, issueNumber, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return IssueWithComments{}, s.fail(span, "fetch issue", "Error fetching issue", err)
	}

	comments := make([]Comment, 0, len(ghComments))
	for _, gc := range ghComments {
		comments = append(comments, fromGithubComment(gc))
	}

	return IssueWithComments{
		Issue:       fromGithubIssue(ghIssue),
		CommentList: comments,
	}, nil
}

func (s *IssueService) CreateComment(ctx context.Context, issueNumber int, body string) (Comment, error) {
	client, rc, err := s.prepare()
	if err != nil {
		return Comment{}, err
	}

	ctx, span := s.startSpan(ctx, "CreateComment", rc, attribute.Int("github.issue_number", issueNumber))
	defer span.End()

	s.out.AppendLine("Creating comment on issue #%d...", issueNumber)

	gc, _, err := client.Issues.CreateComment(ctx, rc.Owner, rc.Repo, issueNumber, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return Comment{}, s.fail(span, "create comment", "Error creating comment", err)
	}

	s.out.AppendLine("Comment created successfully")
	return fromGithubComment(gc), nil
}

// UpdateIssue applies a partial update. Only non-nil fields are sent
func (s *IssueService) UpdateIssue(ctx context.Context, issueNumber int, update IssueUpdate) (Issue, error) {
	client, rc, err := s.prepare()
	if err != nil {
		return Issue{}, err
	}

	ctx, span := s.startSpan(ctx, "UpdateIssue", rc, attribute.Int("github.issue_number", issueNumber))
	defer span.End()

	s.out.AppendLine("Updating issue #%d...", issueNumber)

	req := &github.IssueRequest{
		Title: update.Title,
		Body:  update.Body,
	}
	if update.State != nil {
		req.State = github.Ptr(string(*update.State))
	}

	gi, _, err := client.Issues.Edit(ctx, rc.Owner, rc.Repo, issueNumber, req)
	if err != nil {
		return Issue{}, s.fail(span, "update issue", "Error updating issue", err)
	}

	s.out.AppendLine("Issue updated successfully")
	return fromGithubIssue(gi), nil
}

func (s *IssueService) CreateIssue(ctx context.Context, title string, body string) (Issue, error) {
	client, rc, err := s.prepare()
	if err != nil {
		return Issue{}, err
	}

	ctx, span := s.startSpan(ctx, "CreateIssue", rc)
	defer span.End()

	s.out.AppendLine("Creating new issue...")

	gi, _, err := client.Issues.Create(ctx, rc.Owner, rc.Repo, &github.IssueRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	})
	if err != nil {
		return Issue{}, s.fail(span, "create issue", "Error creating issue", err)
	}

	s.out.AppendLine("Issue #%d created successfully", gi.GetNumber())
	return fromGithubIssue(gi), nil
}

func (s *IssueService) AddLabel(ctx context.Context, issueNumber int, label string) error {
	client, rc, err := s.prepare()
	if err != nil {
		return err
	}

	ctx, span := s.startSpan(ctx, "AddLabel", rc,
		attribute.Int("github.issue_number", issueNumber),
		attribute.String("github.label", label),
	)
	defer span.End()

	s.out.AppendLine("Adding label %q to issue #%d...", label, issueNumber)

	_, _, err = client.Issues.AddLabelsToIssue(ctx, rc.Owner, rc.Repo, issueNumber, []string{label})
	if err != nil {
		return s.fail(span, "add label", "Error adding label", err)
	}
	return nil
}

func (s *IssueService) RemoveLabel(ctx context.Context, issueNumber int, label string) error {
	client, rc, err := s.prepare()
	if err != nil {
		return err
	}

	ctx, span := s.startSpan(ctx, "RemoveLabel", rc,
		attribute.Int("github.issue_number", issueNumber),
		attribute.String("github.label", label),
	)
	defer span.End()

	s.out.AppendLine("Removing label %q from issue #%d...", label, issueNumber)

	_, err = client.Issues.RemoveLabelForIssue(ctx, rc.Owner, rc.Repo, issueNumber, label)
	if err != nil {
		return s.fail(span, "remove label", "Error removing label", err)
	}
	return nil
}
