package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cchalm/ghissues/internal/diag"
	"github.com/cchalm/ghissues/internal/notify"
	"github.com/cchalm/ghissues/internal/panel"
)

// Host delivers events from outside the bubbletea loop into it. Panels, pushes and notices all arrive this way.
//
// Send must never be called from inside Update; the program would deadlock waiting on itself
type Host struct {
	mu      sync.Mutex
	program *tea.Program
	sink    func(tea.Msg)
}

func NewHost() *Host {
	return &Host{}
}

// Attach connects the host to a running program. Messages sent before Attach are dropped
func (h *Host) Attach(p *tea.Program) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.program = p
}

func (h *Host) Send(msg tea.Msg) {
	h.mu.Lock()
	p, sink := h.program, h.sink
	h.mu.Unlock()

	switch {
	case sink != nil:
		sink(msg)
	case p != nil:
		p.Send(msg)
	}
}

// Info implements notify.Notifier by showing the message in the status line
func (h *Host) Info(message string) {
	h.Send(noticeMsg{level: notify.LevelInfo, message: message})
}

func (h *Host) Error(message string) {
	h.Send(noticeMsg{level: notify.LevelError, message: message})
}

// Panels returns a factory whose panels open in the program's detail pane
func (h *Host) Panels(out *diag.Channel) panel.PanelFactory {
	return panel.Bridges{
		Out: out,
		OnCreate: func(b *panel.Bridge) {
			h.Send(panelOpenedMsg{bridge: b})
		},
	}
}

type treeChangedMsg struct{}

type panelOpenedMsg struct {
	bridge *panel.Bridge
}

type panelPushMsg struct {
	bridge *panel.Bridge
	data   []byte
}

type panelRevealedMsg struct {
	bridge *panel.Bridge
}

type panelClosedMsg struct {
	bridge *panel.Bridge
}

type noticeMsg struct {
	level   notify.Level
	message string
}
