package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cchalm/ghissues/internal/diag"
	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/panel"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		ts   string
		want string
	}{
		{"2026-03-10T11:59:30Z", "just now"},
		{"2026-03-10T11:55:00Z", "5 minutes ago"},
		{"2026-03-10T09:00:00Z", "3 hours ago"},
		{"2026-03-07T12:00:00Z", "3 days ago"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDate(tt.ts, testNow), tt.ts)
	}

	assert.Contains(t, formatDate("2025-01-15T12:00:00Z", testNow), "2025")
}

func sampleIssue() githubpkg.IssueWithComments {
	body := "It crashes on start"
	return githubpkg.IssueWithComments{
		Issue: githubpkg.Issue{
			Number:    42,
			Title:     "Crash on start",
			Body:      &body,
			State:     githubpkg.StateOpen,
			User:      &githubpkg.User{Login: "alice"},
			Assignee:  &githubpkg.User{Login: "bob"},
			Labels:    []githubpkg.Label{{Name: "bug", Color: "d73a4a"}},
			CreatedAt: "2026-03-09T12:00:00Z",
			Comments:  1,
		},
		CommentList: []githubpkg.Comment{
			{ID: 1, User: &githubpkg.User{Login: "carol"}, Body: "Same here", CreatedAt: "2026-03-10T10:00:00Z"},
		},
	}
}

func TestRenderIssue(t *testing.T) {
	out := RenderIssue(sampleIssue(), 60, NewStyles(GitHubDark), testNow)

	assert.Contains(t, out, "#42: Crash on start")
	assert.Contains(t, out, "Open")
	assert.Contains(t, out, "alice opened this issue 1 day ago")
	assert.Contains(t, out, "1 comment")
	assert.Contains(t, out, "Assigned to bob")
	assert.Contains(t, out, "bug")
	assert.Contains(t, out, "It crashes on start")
	assert.Contains(t, out, "Comments (1)")
	assert.Contains(t, out, "carol")
	assert.Contains(t, out, "Same here")
}

func TestRenderIssue_NoBodyNoComments(t *testing.T) {
	issue := githubpkg.IssueWithComments{Issue: githubpkg.Issue{Number: 1, Title: "Bare", State: githubpkg.StateClosed}}
	out := RenderIssue(issue, 60, NewStyles(GitHubDark), testNow)

	assert.Contains(t, out, "Closed")
	assert.Contains(t, out, "Unknown opened this issue")
	assert.NotContains(t, out, "Comments (")
}

func TestRenderMirror(t *testing.T) {
	s := NewStyles(GitHubDark)
	m := panel.NewMirror()
	assert.Contains(t, RenderMirror(m, 60, s, testNow), "Loading issue...")

	m.Apply(panel.ErrorMessage{Message: "Failed to fetch issue: Not Found"})
	assert.Contains(t, RenderMirror(m, 60, s, testNow), "Error: Failed to fetch issue: Not Found")

	m.Apply(panel.LoadIssue{Issue: sampleIssue()})
	out := RenderMirror(m, 60, s, testNow)
	assert.NotContains(t, out, "Error:")
	assert.Contains(t, out, "#42: Crash on start")

	m.Apply(panel.ErrorMessage{Message: "Failed to add label: Not Found"})
	out = RenderMirror(m, 60, s, testNow)
	assert.Contains(t, out, "Error: Failed to add label: Not Found")
	assert.Contains(t, out, "#42: Crash on start")
}

func TestConsole_PrintsPushes(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, diag.Discard())
	c.now = func() time.Time { return testNow }

	p, err := c.CreatePanel("Issue #42")
	assert.NoError(t, err)

	assert.NoError(t, p.Post(panel.LoadIssue{Issue: sampleIssue()}))
	assert.Contains(t, buf.String(), "#42: Crash on start")

	buf.Reset()
	assert.NoError(t, p.Post(panel.CommentAdded{Comment: githubpkg.Comment{ID: 2, User: &githubpkg.User{Login: "dave"}, Body: "Fixed"}}))
	assert.Contains(t, buf.String(), "dave")
	assert.Contains(t, buf.String(), "Fixed")
	assert.NotContains(t, buf.String(), "#42")

	buf.Reset()
	assert.NoError(t, p.Post(panel.ErrorMessage{Message: "boom"}))
	assert.Empty(t, buf.String())
}

func TestPrintTree(t *testing.T) {
	p := loadedProvider(t,
		githubpkg.Issue{Number: 1, Title: "First", State: githubpkg.StateOpen, Assignee: &githubpkg.User{Login: "zoe"}},
		githubpkg.Issue{Number: 2, Title: "Second", State: githubpkg.StateClosed},
	)

	var buf bytes.Buffer
	assert.NoError(t, PrintTree(&buf, p))

	out := buf.String()
	assert.Contains(t, out, "Open (1)")
	assert.Contains(t, out, "Closed (1)")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "zoe")
	assert.Contains(t, out, "Second")
}

func TestPrintTree_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, PrintTree(&buf, loadedProvider(t)))
	assert.Equal(t, "No issues\n", buf.String())
}
