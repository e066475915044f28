package panel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cchalm/ghissues/internal/diag"
)

// Panel is the controller's handle on a live detail view
type Panel interface {
	ID() string
	Title() string
	SetTitle(title string)
	// Reveal brings the panel to the front
	Reveal()
	// Post sends a push to the panel UI
	Post(p Push) error
	// OnDidReceiveMessage sets the handler for requests from the panel UI
	OnDidReceiveMessage(fn func(Request))
	// OnDidDispose registers fn to run once when the panel is closed, by either side
	OnDidDispose(fn func())
	Dispose()
}

// PanelFactory creates panels in whatever host is rendering them
type PanelFactory interface {
	CreatePanel(title string) (Panel, error)
}

// Bridge is an in-process Panel. Messages cross it as JSON, exactly as they would cross a process boundary.
//
// Pushes posted before the panel UI attaches are held and delivered, in order, on Attach. This is what lets the
// controller send the initial loadIssue immediately after creating the panel
type Bridge struct {
	id  string
	out *diag.Channel

	// deliverMu orders deliveries to the view across Post and Attach
	deliverMu sync.Mutex

	mu        sync.Mutex
	title     string
	view      func([]byte)
	pending   [][]byte
	onMessage func(Request)
	onReveal  func()
	onDispose []func()
	disposed  bool
}

func NewBridge(title string, out *diag.Channel) *Bridge {
	return &Bridge{
		id:    uuid.New().String(),
		out:   out,
		title: title,
	}
}

func (b *Bridge) ID() string {
	return b.id
}

func (b *Bridge) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

func (b *Bridge) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *Bridge) Reveal() {
	b.mu.Lock()
	onReveal := b.onReveal
	b.mu.Unlock()

	if onReveal != nil {
		onReveal()
	}
}

func (b *Bridge) Post(p Push) error {
	data, err := EncodePush(p)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", p.Command(), err)
	}

	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return nil
	}
	view := b.view
	if view == nil {
		b.pending = append(b.pending, data)
	}
	b.mu.Unlock()

	if view != nil {
		view(data)
	}
	return nil
}

func (b *Bridge) OnDidReceiveMessage(fn func(Request)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMessage = fn
}

func (b *Bridge) OnDidDispose(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDispose = append(b.onDispose, fn)
}

// Dispose closes the panel. Only the first call has any effect
func (b *Bridge) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	b.pending = nil
	handlers := b.onDispose
	b.onDispose = nil
	b.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

func (b *Bridge) Disposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// Attach connects the panel UI. view receives every push as JSON, starting with any that were posted before Attach
func (b *Bridge) Attach(view func(data []byte)) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	b.view = view
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, data := range pending {
		view(data)
	}
}

// OnReveal sets what the panel UI does when the controller reveals the panel
func (b *Bridge) OnReveal(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReveal = fn
}

// Send delivers a JSON request from the panel UI to the controller. Messages with an unknown command are dropped
func (b *Bridge) Send(data []byte) error {
	req, err := DecodeRequest(data)
	if errors.Is(err, ErrUnknownCommand) {
		b.out.AppendLine("Dropping panel message: %v", err)
		return nil
	} else if err != nil {
		return err
	}

	b.mu.Lock()
	handler := b.onMessage
	disposed := b.disposed
	b.mu.Unlock()

	if disposed || handler == nil {
		return nil
	}
	handler(req)
	return nil
}

// SendRequest encodes req and sends it
func (b *Bridge) SendRequest(req Request) error {
	data, err := EncodeRequest(req)
	if err != nil {
		return err
	}
	return b.Send(data)
}

// Bridges is a PanelFactory producing Bridges. OnCreate, if set, is told about every new bridge so a UI can attach
type Bridges struct {
	Out      *diag.Channel
	OnCreate func(*Bridge)
}

func (bs Bridges) CreatePanel(title string) (Panel, error) {
	out := bs.Out
	if out == nil {
		out = diag.Discard()
	}
	b := NewBridge(title, out)
	if bs.OnCreate != nil {
		bs.OnCreate(b)
	}
	return b, nil
}
