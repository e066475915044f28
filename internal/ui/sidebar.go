package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/tree"
)

// row is one visible line of the sidebar
type row struct {
	node  *tree.Node
	depth int
}

// isExpanded reports whether a group is open. toggled holds the groups the user has flipped from their default
func isExpanded(group *tree.Node, toggled map[githubpkg.IssueState]bool) bool {
	open := group.Collapsible == tree.CollapsibleExpanded
	if toggled[group.State] {
		return !open
	}
	return open
}

// flatten lays the tree out in display order
func flatten(p *tree.Provider, toggled map[githubpkg.IssueState]bool) []row {
	var rows []row
	for _, group := range p.Children(nil) {
		rows = append(rows, row{node: group})
		if !isExpanded(group, toggled) {
			continue
		}
		for _, leaf := range p.Children(group) {
			rows = append(rows, row{node: leaf, depth: 1})
		}
	}
	return rows
}

func icon(n *tree.Node) string {
	switch n.Icon {
	case "issues":
		return "○"
	case "issue-closed":
		return "✓"
	default:
		return " "
	}
}

// renderSidebar draws the rows that fit in height, keeping the cursor in view
func renderSidebar(rows []row, cursor int, width int, height int, toggled map[githubpkg.IssueState]bool, s *Styles) string {
	if len(rows) == 0 {
		return s.TreeDim.Render("No issues")
	}

	start := 0
	if height > 0 && cursor >= height {
		start = cursor - height + 1
	}
	end := len(rows)
	if height > 0 && start+height < end {
		end = start + height
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := rows[i]

		var text string
		style := s.TreeItem
		if r.node.Kind == tree.KindGroup {
			arrow := "▸"
			if isExpanded(r.node, toggled) {
				arrow = "▾"
			}
			text = arrow + " " + r.node.Label
			style = s.Group
		} else {
			text = strings.Repeat("  ", r.depth) + icon(r.node) + " " + r.node.Label
			if r.node.Description != "" {
				text += " " + s.TreeDim.Render(r.node.Description)
			}
		}

		if i == cursor {
			style = s.TreeSelected
		}
		lines = append(lines, style.MaxWidth(width).Render(text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
