package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/cchalm/ghissues/internal/diag"
	"github.com/cchalm/ghissues/internal/panel"
)

// ConsoleWidth is the text width panels are rendered at on the command line
const ConsoleWidth = 80

// Console is a PanelFactory whose panels print to a writer. It stands in for the detail pane when ghissues runs as a
// one-shot command
type Console struct {
	out    io.Writer
	diag   *diag.Channel
	styles *Styles
	now    func() time.Time
}

func NewConsole(out io.Writer, d *diag.Channel) *Console {
	return &Console{
		out:    out,
		diag:   d,
		styles: NewStyles(GitHubDark),
		now:    time.Now,
	}
}

func (c *Console) CreatePanel(title string) (panel.Panel, error) {
	b := panel.NewBridge(title, c.diag)
	mirror := panel.NewMirror()
	b.Attach(func(data []byte) {
		p, err := panel.DecodePush(data)
		if err != nil {
			c.diag.AppendLine("Dropping push: %v", err)
			return
		}
		mirror.Apply(p)
		c.print(mirror, p)
	})
	return b, nil
}

func (c *Console) print(mirror *panel.Mirror, p panel.Push) {
	switch msg := p.(type) {
	case panel.LoadIssue, panel.IssueUpdated:
		if issue, ok := mirror.Issue(); ok {
			fmt.Fprintln(c.out, RenderIssue(issue, ConsoleWidth, c.styles, c.now()))
		}
	case panel.CommentAdded:
		fmt.Fprintln(c.out, RenderComment(msg.Comment, ConsoleWidth, c.styles, c.now()))
	case panel.ErrorMessage:
		// Already shown by the notifier
	}
}
