package panel

import (
	"errors"
	"fmt"

	githubpkg "github.com/cchalm/ghissues/internal/github"
)

// Mirror is the panel UI's copy of the issue it is showing. It is only ever changed by pushes from the controller
type Mirror struct {
	issue   *githubpkg.IssueWithComments
	loading bool
	err     string
}

// NewMirror creates a mirror waiting for its first loadIssue
func NewMirror() *Mirror {
	return &Mirror{loading: true}
}

// Issue returns the mirrored issue, if one has been loaded
func (m *Mirror) Issue() (githubpkg.IssueWithComments, bool) {
	if m.issue == nil {
		return githubpkg.IssueWithComments{}, false
	}
	return *m.issue, true
}

// Loading reports whether no issue has arrived yet
func (m *Mirror) Loading() bool {
	return m.loading
}

// Err returns the last error pushed since the last loadIssue
func (m *Mirror) Err() string {
	return m.err
}

// Apply merges a push into the mirror
func (m *Mirror) Apply(p Push) {
	switch msg := p.(type) {
	case LoadIssue:
		issue := msg.Issue
		issue.CommentList = append([]githubpkg.Comment(nil), issue.CommentList...)
		m.issue = &issue
		m.loading = false
		m.err = ""

	case CommentAdded:
		if m.issue == nil {
			return
		}
		var inserted bool
		m.issue.CommentList, inserted = mergeComment(m.issue.CommentList, msg.Comment)
		if inserted {
			m.issue.Comments++
		}

	case IssueUpdated:
		if m.issue == nil {
			return
		}
		m.issue.Issue = msg.Issue

	case ErrorMessage:
		m.err = msg.Message
	}
}

// ApplyJSON decodes and applies a push. Messages with an unknown command are ignored
func (m *Mirror) ApplyJSON(data []byte) error {
	p, err := DecodePush(data)
	if errors.Is(err, ErrUnknownCommand) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to apply push: %w", err)
	}
	m.Apply(p)
	return nil
}

// mergeComment adds c to comments, or replaces the comment with the same id in place. It reports whether c was new
func mergeComment(comments []githubpkg.Comment, c githubpkg.Comment) ([]githubpkg.Comment, bool) {
	for i := range comments {
		if comments[i].ID == c.ID {
			merged := append([]githubpkg.Comment(nil), comments...)
			merged[i] = c
			return merged, false
		}
	}
	return append(comments, c), true
}
