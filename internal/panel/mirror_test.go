package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	githubpkg "github.com/cchalm/ghissues/internal/github"
)

func TestMirror_LoadThenMerge(t *testing.T) {
	m := NewMirror()
	assert.True(t, m.Loading())

	m.Apply(CommentAdded{Comment: githubpkg.Comment{ID: 1}})
	_, ok := m.Issue()
	assert.False(t, ok, "nothing to merge into before the first load")

	m.Apply(LoadIssue{Issue: withComments(4, githubpkg.StateOpen, githubpkg.Comment{ID: 1, Body: "a"})})
	assert.False(t, m.Loading())

	m.Apply(CommentAdded{Comment: githubpkg.Comment{ID: 2, Body: "b"}})
	issue, ok := m.Issue()
	require.True(t, ok)
	assert.Equal(t, 2, issue.Comments)
	require.Len(t, issue.CommentList, 2)
	assert.Equal(t, "b", issue.CommentList[1].Body)
}

func TestMirror_DuplicateCommentAddedIsIdempotent(t *testing.T) {
	m := NewMirror()
	m.Apply(LoadIssue{Issue: withComments(4, githubpkg.StateOpen)})

	c := githubpkg.Comment{ID: 9, Body: "once"}
	m.Apply(CommentAdded{Comment: c})
	m.Apply(CommentAdded{Comment: githubpkg.Comment{ID: 10, Body: "twice"}})
	c.Body = "once, edited"
	m.Apply(CommentAdded{Comment: c})

	issue, _ := m.Issue()
	assert.Equal(t, 2, issue.Comments)
	require.Len(t, issue.CommentList, 2)
	assert.Equal(t, "once, edited", issue.CommentList[0].Body)
	assert.Equal(t, int64(10), issue.CommentList[1].ID)
}

func TestMirror_IssueUpdatedKeepsComments(t *testing.T) {
	m := NewMirror()
	m.Apply(LoadIssue{Issue: withComments(4, githubpkg.StateOpen, githubpkg.Comment{ID: 1})})

	m.Apply(IssueUpdated{Issue: githubpkg.Issue{Number: 4, Title: "Renamed", State: githubpkg.StateOpen, Comments: 1}})

	issue, _ := m.Issue()
	assert.Equal(t, "Renamed", issue.Title)
	assert.Len(t, issue.CommentList, 1)
}

func TestMirror_ErrorClearedByLoad(t *testing.T) {
	m := NewMirror()
	m.Apply(ErrorMessage{Message: "Failed to fetch issue: Not Found"})
	assert.Equal(t, "Failed to fetch issue: Not Found", m.Err())

	m.Apply(LoadIssue{Issue: withComments(1, githubpkg.StateOpen)})
	assert.Empty(t, m.Err())
}

func TestMirror_ApplyJSONIgnoresUnknown(t *testing.T) {
	m := NewMirror()
	require.NoError(t, m.ApplyJSON([]byte(`{"command":"somethingNew","x":1}`)))
	assert.True(t, m.Loading())

	require.NoError(t, m.ApplyJSON([]byte(`{"command":"loadIssue","issue":{"number":3,"title":"t","state":"open","comment_list":[]}}`)))
	issue, ok := m.Issue()
	require.True(t, ok)
	assert.Equal(t, 3, issue.Number)

	assert.Error(t, m.ApplyJSON([]byte(`{"command":"loadIssue","issue":"nope"}`)))
}
