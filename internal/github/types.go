package github

import (
	"time"

	"github.com/google/go-github/v72/github"
)

// IssueState is the lifecycle state of an issue. The zero value matches neither state
type IssueState string

const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
	// StateAll is only meaningful as a list filter
	StateAll IssueState = "all"
)

// User is a reference to a GitHub account
type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Issue is a repository-scoped issue. Field names follow GitHub's REST representation
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      *string    `json:"body"`
	State     IssueState `json:"state"`
	User      *User      `json:"user"`
	Assignee  *User      `json:"assignee"`
	Labels    []Label    `json:"labels"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
	Comments  int        `json:"comments"`
	HTMLURL   string     `json:"html_url"`
}

// GetBody returns the body, or "" if the issue has none
func (i Issue) GetBody() string {
	if i.Body == nil {
		return ""
	}
	return *i.Body
}

type Comment struct {
	ID        int64  `json:"id"`
	User      *User  `json:"user"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// IssueWithComments is an issue plus its comment thread, in the order GitHub returned it
type IssueWithComments struct {
	Issue
	CommentList []Comment `json:"comment_list"`
}

// IssueUpdate is a partial update. Nil fields are not sent, so GitHub leaves them unchanged
type IssueUpdate struct {
	Title *string
	Body  *string
	State *IssueState
}

func fromGithubUser(u *github.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		Login:     u.GetLogin(),
		AvatarURL: u.GetAvatarURL(),
	}
}

func formatTimestamp(ts github.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func fromGithubIssue(gi *github.Issue) Issue {
	labels := make([]Label, 0, len(gi.Labels))
	for _, l := range gi.Labels {
		labels = append(labels, Label{Name: l.GetName(), Color: l.GetColor()})
	}

	return Issue{
		Number:    gi.GetNumber(),
		Title:     gi.GetTitle(),
		Body:      gi.Body,
		State:     IssueState(gi.GetState()),
		User:      fromGithubUser(gi.User),
		Assignee:  fromGithubUser(gi.Assignee),
		Labels:    labels,
		CreatedAt: formatTimestamp(gi.GetCreatedAt()),
		UpdatedAt: formatTimestamp(gi.GetUpdatedAt()),
		Comments:  gi.GetComments(),
		HTMLURL:   gi.GetHTMLURL(),
	}
}

func fromGithubComment(gc *github.IssueComment) Comment {
	return Comment{
		ID:        gc.GetID(),
		User:      fromGithubUser(gc.User),
		Body:      gc.GetBody(),
		CreatedAt: formatTimestamp(gc.GetCreatedAt()),
		UpdatedAt: formatTimestamp(gc.GetUpdatedAt()),
	}
}
