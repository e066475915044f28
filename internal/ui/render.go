package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/panel"
)

// formatDate renders a GitHub timestamp relative to now, falling back to a calendar date after a month
func formatDate(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}

	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < 30*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

func login(u *githubpkg.User) string {
	if u == nil || u.Login == "" {
		return "Unknown"
	}
	return u.Login
}

// RenderIssue renders an issue and its comment thread to fit width
func RenderIssue(issue githubpkg.IssueWithComments, width int, s *Styles, now time.Time) string {
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)
	rule := s.Rule.Render(strings.Repeat("─", width))

	var b strings.Builder

	b.WriteString(wrap.Render(s.Title.Render(fmt.Sprintf("#%d: %s", issue.Number, issue.Title))))
	b.WriteString("\n")

	state := s.StateOpen.Render("Open")
	if issue.State == githubpkg.StateClosed {
		state = s.StateClose.Render("Closed")
	}
	b.WriteString(state)
	b.WriteString(" ")
	b.WriteString(s.Meta.Render(fmt.Sprintf("%s opened this issue %s · %s",
		login(issue.User), formatDate(issue.CreatedAt, now), english.Plural(issue.Comments, "comment", "comments"))))
	b.WriteString("\n")

	if issue.Assignee != nil {
		b.WriteString(s.Meta.Render("Assigned to " + issue.Assignee.Login))
		b.WriteString("\n")
	}

	if len(issue.Labels) > 0 {
		labels := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			labels = append(labels, s.labelStyle(l.Color).Render(l.Name))
		}
		b.WriteString(wrap.Render(strings.Join(labels, "")))
		b.WriteString("\n")
	}

	if body := issue.GetBody(); body != "" {
		b.WriteString(rule)
		b.WriteString("\n")
		b.WriteString(s.Author.Render(login(issue.User)))
		b.WriteString("\n")
		b.WriteString(s.Body.Width(width).Render(body))
		b.WriteString("\n")
	}

	if len(issue.CommentList) > 0 {
		b.WriteString(rule)
		b.WriteString("\n")
		b.WriteString(s.Section.Render(fmt.Sprintf("Comments (%d)", len(issue.CommentList))))
		b.WriteString("\n")
		for _, c := range issue.CommentList {
			b.WriteString("\n")
			b.WriteString(RenderComment(c, width, s, now))
		}
	}

	return b.String()
}

// RenderComment renders one comment with its author line
func RenderComment(c githubpkg.Comment, width int, s *Styles, now time.Time) string {
	var b strings.Builder
	b.WriteString(s.Author.Render(login(c.User)))
	b.WriteString(" ")
	b.WriteString(s.Meta.Render("commented " + formatDate(c.CreatedAt, now)))
	b.WriteString("\n")
	b.WriteString(s.Body.Width(width).Render(c.Body))
	b.WriteString("\n")
	return b.String()
}

// RenderMirror renders whatever state the panel is in. An error is shown above the issue it relates to
func RenderMirror(m *panel.Mirror, width int, s *Styles, now time.Time) string {
	issue, ok := m.Issue()

	var errLine string
	if err := m.Err(); err != "" {
		errLine = s.StatusErr.Width(width).Render("Error: " + err)
		if !ok {
			return errLine
		}
		errLine += "\n\n"
	}

	switch {
	case m.Loading():
		return s.Meta.Render("Loading issue...")
	case !ok:
		return s.Meta.Render("No issue selected")
	}
	return errLine + RenderIssue(issue, width, s, now)
}
