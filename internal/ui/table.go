package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/tree"
)

var (
	groupHeader = color.New(color.FgHiCyan, color.Bold).SprintFunc()
	green       = color.New(color.FgHiGreen).SprintFunc()
	magenta     = color.New(color.FgHiMagenta).SprintFunc()
)

func stateColor(state githubpkg.IssueState) string {
	switch state {
	case githubpkg.StateOpen:
		return green(string(state))
	case githubpkg.StateClosed:
		return magenta(string(state))
	default:
		return string(state)
	}
}

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// PrintTree writes the tree's groups as tables, every group expanded
func PrintTree(w io.Writer, p *tree.Provider) error {
	groups := p.Children(nil)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No issues")
		return nil
	}

	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, groupHeader(group.Label))

		table := newTable(w, []string{"Number", "Title", "State", "Assignee"})
		for _, leaf := range p.Children(group) {
			issue := leaf.Issue
			if err := table.Append([]string{
				"#" + strconv.Itoa(issue.Number),
				issue.Title,
				stateColor(issue.State),
				leaf.Description,
			}); err != nil {
				return fmt.Errorf("failed to add row: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}
	return nil
}
