package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the app's key bindings
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Focus   key.Binding
	Refresh key.Binding
	Comment key.Binding
	Submit  key.Binding
	Close   key.Binding
	Reopen  key.Binding
	AddLbl  key.Binding
	DelLbl  key.Binding
	Edit    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "open"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Close: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close issue"),
		),
		Reopen: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "reopen issue"),
		),
		AddLbl: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "add label"),
		),
		DelLbl: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "remove label"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit title"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close panel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Focus, k.Refresh, k.Comment, k.Close, k.Reopen, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Focus, k.Refresh},
		{k.Comment, k.Submit, k.Edit, k.AddLbl, k.DelLbl},
		{k.Close, k.Reopen, k.Back, k.Quit},
	}
}
