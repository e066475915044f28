// Package ui is the terminal front end: the issue tree in a sidebar and the detail panel beside it.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	githubpkg "github.com/cchalm/ghissues/internal/github"
	"github.com/cchalm/ghissues/internal/notify"
	"github.com/cchalm/ghissues/internal/panel"
	"github.com/cchalm/ghissues/internal/tree"
)

type focusArea int

const (
	focusTree focusArea = iota
	focusDetail
)

// inputMode is what the detail pane's editor is collecting
type inputMode int

const (
	modeNone inputMode = iota
	modeComment
	modeAddLabel
	modeRemoveLabel
	modeEditTitle
)

// App is the root model
type App struct {
	ctx      context.Context
	title    string
	provider *tree.Provider
	manager  *panel.Manager
	host     *Host
	styles   *Styles
	keys     KeyMap
	help     help.Model
	now      func() time.Time

	width  int
	height int
	focus  focusArea

	rows    []row
	cursor  int
	toggled map[githubpkg.IssueState]bool

	bridge *panel.Bridge
	mirror *panel.Mirror
	detail viewport.Model

	mode     inputMode
	textarea textarea.Model
	input    textinput.Model

	status    string
	statusErr bool
}

// NewApp creates the app. manager must have been built with host as its notifier and host.Panels as its factory
func NewApp(ctx context.Context, title string, provider *tree.Provider, manager *panel.Manager, host *Host) *App {
	ta := textarea.New()
	ta.Placeholder = "Leave a comment..."
	ta.CharLimit = 65536
	ta.ShowLineNumbers = false
	ta.SetHeight(4)

	ti := textinput.New()
	ti.CharLimit = 256

	return &App{
		ctx:      ctx,
		title:    title,
		provider: provider,
		manager:  manager,
		host:     host,
		styles:   NewStyles(GitHubDark),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		now:      time.Now,
		toggled:  map[githubpkg.IssueState]bool{},
		detail:   viewport.New(0, 0),
		textarea: ta,
		input:    ti,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadIssues()
}

func (a *App) loadIssues() tea.Cmd {
	provider, ctx := a.provider, a.ctx
	return func() tea.Msg {
		provider.LoadIssues(ctx)
		return treeChangedMsg{}
	}
}

func (a *App) showIssue(issue githubpkg.Issue) tea.Cmd {
	manager, ctx := a.manager, a.ctx
	return func() tea.Msg {
		// Failures are reported through the notifier
		_ = manager.ShowIssue(ctx, issue)
		return nil
	}
}

// send posts a request to the controller through the open panel, exactly as typed input would
func (a *App) send(req panel.Request) tea.Cmd {
	b := a.bridge
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		if err := b.SendRequest(req); err != nil {
			return noticeMsg{level: notify.LevelError, message: err.Error()}
		}
		return nil
	}
}

func (a *App) attach(b *panel.Bridge) tea.Cmd {
	host := a.host
	return func() tea.Msg {
		b.OnReveal(func() { host.Send(panelRevealedMsg{bridge: b}) })
		b.OnDidDispose(func() { host.Send(panelClosedMsg{bridge: b}) })
		b.Attach(func(data []byte) { host.Send(panelPushMsg{bridge: b, data: data}) })
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.resize()
		return a, nil

	case treeChangedMsg:
		a.rebuildRows()
		return a, nil

	case panelOpenedMsg:
		a.bridge = msg.bridge
		a.mirror = panel.NewMirror()
		a.mode = modeNone
		a.focus = focusDetail
		a.refreshDetail()
		return a, a.attach(msg.bridge)

	case panelPushMsg:
		if msg.bridge != a.bridge {
			return a, nil
		}
		if err := a.mirror.ApplyJSON(msg.data); err != nil {
			a.setStatus(notify.LevelError, err.Error())
		}
		a.refreshDetail()
		return a, nil

	case panelRevealedMsg:
		if msg.bridge == a.bridge {
			a.focus = focusDetail
			a.detail.GotoTop()
		}
		return a, nil

	case panelClosedMsg:
		if msg.bridge == a.bridge {
			a.bridge = nil
			a.mirror = nil
			a.mode = modeNone
			a.focus = focusTree
			a.refreshDetail()
		}
		return a, nil

	case noticeMsg:
		a.setStatus(msg.level, msg.message)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.mode != modeNone {
			return a.updateEditing(msg)
		}
		if a.focus == focusDetail {
			return a.updateDetail(msg)
		}
		return a.updateTree(msg)
	}

	return a, nil
}

func (a *App) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Refresh):
		a.status = "Loading issues..."
		a.statusErr = false
		return a, a.loadIssues()

	case key.Matches(msg, a.keys.Focus):
		if a.bridge != nil {
			a.focus = focusDetail
		}

	case key.Matches(msg, a.keys.Open):
		if a.cursor >= len(a.rows) {
			return a, nil
		}
		node := a.rows[a.cursor].node
		if node.Kind == tree.KindGroup {
			a.toggled[node.State] = !a.toggled[node.State]
			a.rebuildRows()
			return a, nil
		}
		if node.Command != nil {
			a.status = "Loading " + node.Label
			a.statusErr = false
			return a, a.showIssue(node.Command.Issue)
		}
	}
	return a, nil
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	issue, loaded := a.currentIssue()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Focus):
		a.focus = focusTree
		return a, nil

	case key.Matches(msg, a.keys.Back):
		b := a.bridge
		if b == nil {
			a.focus = focusTree
			return a, nil
		}
		return a, func() tea.Msg {
			b.Dispose()
			return nil
		}

	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadIssues()
	}

	if loaded {
		switch {
		case key.Matches(msg, a.keys.Comment):
			return a, a.startEditing(modeComment, "")

		case key.Matches(msg, a.keys.Edit):
			return a, a.startEditing(modeEditTitle, issue.Title)

		case key.Matches(msg, a.keys.AddLbl):
			return a, a.startEditing(modeAddLabel, "")

		case key.Matches(msg, a.keys.DelLbl):
			return a, a.startEditing(modeRemoveLabel, "")

		case key.Matches(msg, a.keys.Close):
			if issue.State == githubpkg.StateOpen {
				return a, a.send(panel.CloseIssue{IssueNumber: issue.Number})
			}
			return a, nil

		case key.Matches(msg, a.keys.Reopen):
			if issue.State == githubpkg.StateClosed {
				return a, a.send(panel.ReopenIssue{IssueNumber: issue.Number})
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

func (a *App) startEditing(mode inputMode, value string) tea.Cmd {
	a.mode = mode
	a.resize()

	if mode == modeComment {
		a.textarea.Reset()
		return a.textarea.Focus()
	}

	switch mode {
	case modeAddLabel:
		a.input.Placeholder = "Label to add"
	case modeRemoveLabel:
		a.input.Placeholder = "Label to remove"
	case modeEditTitle:
		a.input.Placeholder = "Issue title"
	}
	a.input.SetValue(value)
	a.input.CursorEnd()
	return a.input.Focus()
}

func (a *App) stopEditing() {
	a.mode = modeNone
	a.textarea.Blur()
	a.input.Blur()
	a.resize()
}

func (a *App) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Back) {
		a.stopEditing()
		return a, nil
	}

	issue, loaded := a.currentIssue()

	if a.mode == modeComment {
		if key.Matches(msg, a.keys.Submit) {
			body := a.textarea.Value()
			if strings.TrimSpace(body) == "" || !loaded {
				return a, nil
			}
			a.stopEditing()
			return a, a.send(panel.AddComment{IssueNumber: issue.Number, Body: body})
		}
		var cmd tea.Cmd
		a.textarea, cmd = a.textarea.Update(msg)
		return a, cmd
	}

	if msg.Type == tea.KeyEnter {
		value := strings.TrimSpace(a.input.Value())
		mode := a.mode
		a.stopEditing()
		if value == "" || !loaded {
			return a, nil
		}
		switch mode {
		case modeAddLabel:
			return a, a.send(panel.AddLabel{IssueNumber: issue.Number, Label: value})
		case modeRemoveLabel:
			return a, a.send(panel.RemoveLabel{IssueNumber: issue.Number, Label: value})
		case modeEditTitle:
			if value == issue.Title {
				return a, nil
			}
			return a, a.send(panel.UpdateIssue{IssueNumber: issue.Number, Updates: panel.Updates{Title: &value}})
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) currentIssue() (githubpkg.IssueWithComments, bool) {
	if a.mirror == nil {
		return githubpkg.IssueWithComments{}, false
	}
	return a.mirror.Issue()
}

func (a *App) setStatus(level notify.Level, message string) {
	a.status = message
	a.statusErr = level == notify.LevelError
}

func (a *App) rebuildRows() {
	a.rows = flatten(a.provider, a.toggled)
	if a.cursor >= len(a.rows) {
		a.cursor = max(0, len(a.rows)-1)
	}
}

// detailWidth is the text width inside the detail pane's border and padding
func (a *App) detailWidth() int {
	return max(20, a.width-SidebarWidth-8)
}

// bodyHeight is the height inside the panes' borders
func (a *App) bodyHeight() int {
	return max(3, a.height-5)
}

func (a *App) resize() {
	a.textarea.SetWidth(a.detailWidth())
	a.input.Width = a.detailWidth() - 2

	height := a.bodyHeight()
	switch a.mode {
	case modeComment:
		height -= a.textarea.Height() + 2
	case modeNone:
	default:
		height -= 3
	}
	a.detail.Width = a.detailWidth()
	a.detail.Height = max(1, height)
	a.refreshDetail()
}

func (a *App) refreshDetail() {
	if a.mirror == nil {
		a.detail.SetContent(a.styles.Meta.Render("Select an issue to view it here"))
		return
	}
	a.detail.SetContent(RenderMirror(a.mirror, a.detailWidth(), a.styles, a.now()))
}

func (a *App) View() string {
	header := a.styles.Title.Render("GitHub Issues")
	if a.title != "" {
		header += a.styles.Meta.Render("  " + a.title)
	}

	sidebarStyle, detailStyle := a.styles.PaneFocus, a.styles.Pane
	if a.focus == focusDetail {
		sidebarStyle, detailStyle = a.styles.Pane, a.styles.PaneFocus
	}

	sidebar := sidebarStyle.
		Width(SidebarWidth).
		Height(a.bodyHeight()).
		Render(renderSidebar(a.rows, a.cursor, SidebarWidth-2, a.bodyHeight(), a.toggled, a.styles))

	detailContent := a.detail.View()
	switch a.mode {
	case modeComment:
		detailContent = lipgloss.JoinVertical(lipgloss.Left, detailContent, a.styles.Input.Render(a.textarea.View()))
	case modeNone:
	default:
		detailContent = lipgloss.JoinVertical(lipgloss.Left, detailContent, a.styles.Input.Render(a.input.View()))
	}
	detail := detailStyle.
		Width(a.detailWidth() + 2).
		Height(a.bodyHeight()).
		Render(detailContent)

	status := a.styles.StatusOK.Render(a.status)
	if a.statusErr {
		status = a.styles.StatusErr.Render(a.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, detail),
		status,
		a.styles.Help.Render(a.help.View(a.keys)),
	)
}
