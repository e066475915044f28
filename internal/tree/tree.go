// Package tree projects the last loaded issue list into the sidebar's open and closed groups.
package tree

import (
	"context"
	"fmt"
	"sync"

	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/notify"
)

// OpenIssueCommand is the command attached to every issue leaf
const OpenIssueCommand = "ghissues.openIssue"

// IssueLister fetches the issues shown in the tree
type IssueLister interface {
	ListIssues(ctx context.Context, state githubpkg.IssueState) ([]githubpkg.Issue, error)
}

type CollapsibleState int

const (
	CollapsibleNone CollapsibleState = iota
	CollapsibleCollapsed
	CollapsibleExpanded
)

type NodeKind int

const (
	KindGroup NodeKind = iota
	KindIssue
)

// Command is what activating a node does
type Command struct {
	ID    string
	Title string
	Issue githubpkg.Issue
}

// Node is a group or an issue leaf
type Node struct {
	Kind         NodeKind
	Label        string
	Description  string
	Tooltip      string
	Icon         string
	ContextValue string
	Collapsible  CollapsibleState

	// Group nodes carry their state tag and their slice of the last load
	State  githubpkg.IssueState
	Issues []githubpkg.Issue

	// Issue leaves carry the issue and the command to open it
	Issue   *githubpkg.Issue
	Command *Command
}

// Provider holds the last successfully loaded issue list. Membership only changes on LoadIssues
type Provider struct {
	lister   IssueLister
	notifier notify.Notifier

	mu     sync.RWMutex
	issues []githubpkg.Issue

	listenersMu    sync.Mutex
	listeners      map[int]func(*Node)
	nextListenerID int
}

func NewProvider(lister IssueLister, notifier notify.Notifier) *Provider {
	return &Provider{
		lister:    lister,
		notifier:  notifier,
		listeners: map[int]func(*Node){},
	}
}

// LoadIssues replaces the issue list with every issue in the repository. On failure the list is emptied so the tree
// shows nothing rather than stale data, and the error is shown to the user before being returned. Either way a
// change is signalled
func (p *Provider) LoadIssues(ctx context.Context) error {
	issues, err := p.lister.ListIssues(ctx, githubpkg.StateAll)
	if err != nil {
		p.notifier.Error(fmt.Sprintf("Failed to load issues: %s", err))
		issues = nil
	}

	p.mu.Lock()
	p.issues = issues
	p.mu.Unlock()

	p.Refresh()
	return err
}

// Issues returns a copy of the last loaded list
func (p *Provider) Issues() []githubpkg.Issue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]githubpkg.Issue(nil), p.issues...)
}

// Refresh signals that the whole tree may have changed
func (p *Provider) Refresh() {
	p.fire(nil)
}

// OnDidChange registers fn to be called on every change signal. A nil node means the whole tree. The returned
// function unregisters fn
func (p *Provider) OnDidChange(fn func(*Node)) func() {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()

	id := p.nextListenerID
	p.nextListenerID++
	p.listeners[id] = fn

	return func() {
		p.listenersMu.Lock()
		defer p.listenersMu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) fire(node *Node) {
	p.listenersMu.Lock()
	listeners := make([]func(*Node), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(node)
	}
}

// Children returns the root groups for a nil node, the issues of a group node, and nothing for a leaf
func (p *Provider) Children(node *Node) []*Node {
	if node == nil {
		return p.rootGroups()
	}
	if node.Kind != KindGroup {
		return nil
	}

	leaves := make([]*Node, 0, len(node.Issues))
	for _, issue := range node.Issues {
		leaves = append(leaves, newIssueNode(issue))
	}
	return leaves
}

func (p *Provider) rootGroups() []*Node {
	open, closed := Partition(p.Issues())

	var groups []*Node
	if len(open) > 0 {
		groups = append(groups, &Node{
			Kind:         KindGroup,
			Label:        fmt.Sprintf("Open (%d)", len(open)),
			ContextValue: "group",
			Collapsible:  CollapsibleExpanded,
			State:        githubpkg.StateOpen,
			Issues:       open,
		})
	}
	if len(closed) > 0 {
		groups = append(groups, &Node{
			Kind:         KindGroup,
			Label:        fmt.Sprintf("Closed (%d)", len(closed)),
			ContextValue: "group",
			Collapsible:  CollapsibleCollapsed,
			State:        githubpkg.StateClosed,
			Issues:       closed,
		})
	}
	return groups
}

// Partition splits issues by state, keeping their order. Issues in any other state are in neither group
func Partition(issues []githubpkg.Issue) (open []githubpkg.Issue, closed []githubpkg.Issue) {
	for _, issue := range issues {
		switch issue.State {
		case githubpkg.StateOpen:
			open = append(open, issue)
		case githubpkg.StateClosed:
			closed = append(closed, issue)
		}
	}
	return open, closed
}

func newIssueNode(issue githubpkg.Issue) *Node {
	tooltip := issue.GetBody()
	if tooltip == "" {
		tooltip = issue.Title
	}

	var assignee string
	if issue.Assignee != nil {
		assignee = issue.Assignee.Login
	}

	icon := "issue-closed"
	if issue.State == githubpkg.StateOpen {
		icon = "issues"
	}

	return &Node{
		Kind:         KindIssue,
		Label:        fmt.Sprintf("#%d: %s", issue.Number, issue.Title),
		Description:  assignee,
		Tooltip:      tooltip,
		Icon:         icon,
		ContextValue: "issue",
		Collapsible:  CollapsibleNone,
		Issue:        &issue,
		Command: &Command{
			ID:    OpenIssueCommand,
			Title: "Open Issue",
			Issue: issue,
		},
	}
}
