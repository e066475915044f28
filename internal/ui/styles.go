package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a color scheme
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	// Issue states
	Open   lipgloss.Color
	Closed lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// GitHubDark is the default theme
var GitHubDark = Theme{
	Name: "GitHub Dark",

	Foreground:    lipgloss.Color("#e6edf3"),
	ForegroundDim: lipgloss.Color("#7d8590"),

	Primary: lipgloss.Color("#2f81f7"),
	Accent:  lipgloss.Color("#a371f7"),

	Open:   lipgloss.Color("#3fb950"),
	Closed: lipgloss.Color("#a371f7"),

	Success: lipgloss.Color("#3fb950"),
	Error:   lipgloss.Color("#f85149"),

	Border:      lipgloss.Color("#30363d"),
	BorderFocus: lipgloss.Color("#2f81f7"),
	Selection:   lipgloss.Color("#1f3a5f"),
}

// SidebarWidth is the fixed width of the issue tree
const SidebarWidth = 36

// Styles holds the pre-computed styles for the UI
type Styles struct {
	Pane      lipgloss.Style
	PaneFocus lipgloss.Style

	// Tree
	Group        lipgloss.Style
	TreeItem     lipgloss.Style
	TreeSelected lipgloss.Style
	TreeDim      lipgloss.Style

	// Detail
	Title      lipgloss.Style
	StateOpen  lipgloss.Style
	StateClose lipgloss.Style
	Meta       lipgloss.Style
	Label      lipgloss.Style
	Section    lipgloss.Style
	Author     lipgloss.Style
	Body       lipgloss.Style
	Rule       lipgloss.Style

	Input lipgloss.Style

	Help      lipgloss.Style
	StatusOK  lipgloss.Style
	StatusErr lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) *Styles {
	return &Styles{
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		PaneFocus: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Group: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TreeItem: lipgloss.NewStyle().
			Foreground(t.Foreground),

		TreeSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Selection).
			Bold(true),

		TreeDim: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Title: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Bold(true),

		StateOpen: lipgloss.NewStyle().
			Foreground(t.Open).
			Bold(true),

		StateClose: lipgloss.NewStyle().
			Foreground(t.Closed).
			Bold(true),

		Meta: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Label: lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1),

		Section: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Author: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(t.Foreground).
			PaddingLeft(2),

		Rule: lipgloss.NewStyle().
			Foreground(t.Border),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatusOK: lipgloss.NewStyle().
			Foreground(t.Success),

		StatusErr: lipgloss.NewStyle().
			Foreground(t.Error),
	}
}

// labelStyle tints a label with its GitHub color
func (s *Styles) labelStyle(color string) lipgloss.Style {
	if color == "" {
		return s.Label
	}
	return s.Label.
		Foreground(lipgloss.Color("#" + color)).
		Bold(true)
}
