package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIssueNumber(t *testing.T) {
	n, err := parseIssueNumber("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"", "0", "-3", "#42", "4.2"} {
		_, err := parseIssueNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"signin", "signout", "configure", "refresh", "open", "create", "comment", "close", "reopen", "edit", "label", "browse", "version"} {
		assert.True(t, names[want], want)
	}

	sub, _, err := rootCmd.Find([]string{"label", "rm"})
	require.NoError(t, err)
	assert.Equal(t, "remove", sub.Name())
}
