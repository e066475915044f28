// Package notify delivers user-visible notices. Success and failure always use different channels so they are never
// confused.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Notifier shows short notices to the user
type Notifier interface {
	Info(message string)
	Error(message string)
}

var (
	infoPrefix  = color.New(color.FgHiGreen).Sprint("✓")
	errorPrefix = color.New(color.FgHiRed).Sprint("✗")
)

// Console prints notices to a terminal
type Console struct {
	Out    io.Writer
	ErrOut io.Writer
}

// NewConsole creates a Console writing to stdout and stderr
func NewConsole() *Console {
	return &Console{Out: os.Stdout, ErrOut: os.Stderr}
}

func (c *Console) Info(message string) {
	fmt.Fprintf(c.Out, "%s %s\n", infoPrefix, message)
}

func (c *Console) Error(message string) {
	fmt.Fprintf(c.ErrOut, "%s %s\n", errorPrefix, message)
}

// Level distinguishes recorded notices
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

type Notice struct {
	Level   Level
	Message string
}

// Recorder keeps every notice in memory
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Info(message string)  { r.add(LevelInfo, message) }
func (r *Recorder) Error(message string) { r.add(LevelError, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: message})
}

// Notices returns a copy of everything recorded so far
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Messages returns the recorded messages at the given level
func (r *Recorder) Messages(level Level) []string {
	var messages []string
	for _, n := range r.Notices() {
		if n.Level == level {
			messages = append(messages, n.Message)
		}
	}
	return messages
}
