package panel

import (
	"context"
	"fmt"
	"sync"

	"github.com/cchalm/ghissues/internal/diag"
	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/notify"
)

// IssueService is the part of the issue client the controller relays requests to
type IssueService interface {
	GetIssue(ctx context.Context, issueNumber int) (githubpkg.IssueWithComments, error)
	CreateComment(ctx context.Context, issueNumber int, body string) (githubpkg.Comment, error)
	UpdateIssue(ctx context.Context, issueNumber int, update githubpkg.IssueUpdate) (githubpkg.Issue, error)
	AddLabel(ctx context.Context, issueNumber int, label string) error
	RemoveLabel(ctx context.Context, issueNumber int, label string) error
}

// Manager controls the single detail panel. It holds at most one live panel and the issue last pushed to it.
//
// Requests are handled one at a time, to completion, in the order they arrive
type Manager struct {
	ctx      context.Context
	service  IssueService
	factory  PanelFactory
	notifier notify.Notifier
	out      *diag.Channel

	mu           sync.Mutex
	panel        Panel
	currentIssue *githubpkg.IssueWithComments
}

// NewManager creates a controller. ctx bounds the requests the panel sends; it is not cancelled by disposing the panel
func NewManager(ctx context.Context, service IssueService, factory PanelFactory, notifier notify.Notifier, out *diag.Channel) *Manager {
	return &Manager{
		ctx:      ctx,
		service:  service,
		factory:  factory,
		notifier: notifier,
		out:      out,
	}
}

func panelTitle(issueNumber int) string {
	return fmt.Sprintf("Issue #%d", issueNumber)
}

// ShowIssue loads the full issue and shows it, reusing the open panel if there is one. Failures are reported to the
// user and also returned
func (m *Manager) ShowIssue(ctx context.Context, issue githubpkg.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	full, err := m.service.GetIssue(ctx, issue.Number)
	if err != nil {
		m.notifier.Error(fmt.Sprintf("Failed to load issue: %s", err))
		return err
	}
	m.currentIssue = &full

	if m.panel != nil {
		m.panel.SetTitle(panelTitle(full.Number))
		m.panel.Reveal()
		return m.post(LoadIssue{Issue: full})
	}

	panel, err := m.factory.CreatePanel(panelTitle(full.Number))
	if err != nil {
		m.currentIssue = nil
		m.notifier.Error(fmt.Sprintf("Failed to load issue: %s", err))
		return fmt.Errorf("failed to create panel: %w", err)
	}
	m.panel = panel
	m.out.AppendLine("Opened panel %s for issue #%d", panel.ID(), full.Number)

	panel.OnDidReceiveMessage(func(req Request) {
		m.handle(panel, req)
	})
	panel.OnDidDispose(func() {
		m.disposed(panel)
	})

	// The panel holds pushes until its UI attaches, so the initial load can go out right away
	return m.post(LoadIssue{Issue: full})
}

// post sends p to the live panel, if any. m.mu must be held
func (m *Manager) post(p Push) error {
	if m.panel == nil {
		return nil
	}
	if err := m.panel.Post(p); err != nil {
		m.out.AppendLine("Failed to post %s: %v", p.Command(), err)
		return err
	}
	return nil
}

func (m *Manager) disposed(panel Panel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.panel != panel {
		return
	}
	m.out.AppendLine("Panel %s closed", panel.ID())
	m.panel = nil
	m.currentIssue = nil
}

// handle runs a request that arrived from panel
func (m *Manager) handle(panel Panel, req Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.panel != panel {
		m.out.AppendLine("Ignoring %s from closed panel %s", req.Command(), panel.ID())
		return
	}
	_ = m.handleLocked(m.ctx, req)
}

// HandleRequest runs req as if the panel had sent it. Results go to the live panel, if there is one. The returned
// error has already been pushed and shown to the user
func (m *Manager) HandleRequest(ctx context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handleLocked(ctx, req)
}

func (m *Manager) handleLocked(ctx context.Context, req Request) error {
	notice, err := m.dispatch(ctx, req)
	if err != nil {
		_ = m.post(ErrorMessage{Message: err.Error()})
		m.notifier.Error(err.Error())
		return err
	}
	m.notifier.Info(notice)
	return nil
}

// dispatch makes the GitHub calls for req and returns the confirmation to show the user. Results are pushed only
// when they belong to the issue the panel is showing. Once GitHub has accepted a change, a failed push is logged by
// post and does not turn the request into a failure
func (m *Manager) dispatch(ctx context.Context, req Request) (string, error) {
	switch r := req.(type) {
	case AddComment:
		comment, err := m.service.CreateComment(ctx, r.IssueNumber, r.Body)
		if err != nil {
			return "", err
		}
		if m.appendComment(r.IssueNumber, comment) {
			_ = m.post(CommentAdded{Comment: comment})
		}
		return "Comment added successfully", nil

	case UpdateIssue:
		issue, err := m.service.UpdateIssue(ctx, r.IssueNumber, githubpkg.IssueUpdate{
			Title: r.Updates.Title,
			Body:  r.Updates.Body,
		})
		if err != nil {
			return "", err
		}
		if m.replaceIssue(issue) {
			_ = m.post(IssueUpdated{Issue: issue})
		}
		return "Issue updated successfully", nil

	case CloseIssue:
		return "Issue closed", m.setState(ctx, r.IssueNumber, githubpkg.StateClosed)

	case ReopenIssue:
		return "Issue reopened", m.setState(ctx, r.IssueNumber, githubpkg.StateOpen)

	case AddLabel:
		if err := m.service.AddLabel(ctx, r.IssueNumber, r.Label); err != nil {
			return "", err
		}
		return fmt.Sprintf("Label %q added", r.Label), nil

	case RemoveLabel:
		if err := m.service.RemoveLabel(ctx, r.IssueNumber, r.Label); err != nil {
			return "", err
		}
		return fmt.Sprintf("Label %q removed", r.Label), nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command())
	}
}

// setState updates the issue's state and then re-fetches it, pushing GitHub's canonical copy
func (m *Manager) setState(ctx context.Context, issueNumber int, state githubpkg.IssueState) error {
	if _, err := m.service.UpdateIssue(ctx, issueNumber, githubpkg.IssueUpdate{State: &state}); err != nil {
		return err
	}
	full, err := m.service.GetIssue(ctx, issueNumber)
	if err != nil {
		return err
	}
	if !m.showing(issueNumber) {
		return nil
	}
	m.currentIssue = &full
	_ = m.post(LoadIssue{Issue: full})
	return nil
}

// showing reports whether issueNumber is the current issue. m.mu must be held
func (m *Manager) showing(issueNumber int) bool {
	return m.currentIssue != nil && m.currentIssue.Number == issueNumber
}

// appendComment merges comment into the current issue and reports whether it belonged there
func (m *Manager) appendComment(issueNumber int, comment githubpkg.Comment) bool {
	if !m.showing(issueNumber) {
		return false
	}
	updated := *m.currentIssue
	var inserted bool
	updated.CommentList, inserted = mergeComment(updated.CommentList, comment)
	if inserted {
		updated.Comments++
	}
	m.currentIssue = &updated
	return true
}

func (m *Manager) replaceIssue(issue githubpkg.Issue) bool {
	if !m.showing(issue.Number) {
		return false
	}
	m.currentIssue = &githubpkg.IssueWithComments{
		Issue:       issue,
		CommentList: m.currentIssue.CommentList,
	}
	return true
}

// Current returns the issue the panel is showing
func (m *Manager) Current() (githubpkg.IssueWithComments, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentIssue == nil {
		return githubpkg.IssueWithComments{}, false
	}
	return *m.currentIssue, true
}

// Panel returns the live panel, or nil
func (m *Manager) Panel() Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panel
}

// Dispose closes the live panel, if any
func (m *Manager) Dispose() {
	m.mu.Lock()
	panel := m.panel
	m.mu.Unlock()

	if panel != nil {
		panel.Dispose()
	}
}

// Registry owns the process's one controller. It is built on first use and torn down by Close
type Registry struct {
	build func() *Manager

	mu      sync.Mutex
	manager *Manager
}

func NewRegistry(build func() *Manager) *Registry {
	return &Registry{build: build}
}

// Get returns the controller, building it if needed
func (r *Registry) Get() *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.manager == nil {
		r.manager = r.build()
	}
	return r.manager
}

// Close disposes the controller's panel and forgets the controller
func (r *Registry) Close() {
	r.mu.Lock()
	manager := r.manager
	r.manager = nil
	r.mu.Unlock()

	if manager != nil {
		manager.Dispose()
	}
}
