// Package diag provides the diagnostic output channel that records what the issue client and the
// panel controller are doing. Lines are informational only; nothing reads them back.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ChannelName is the name diagnostic lines are published under
const ChannelName = "GitHub Issues"

// Channel is an append-only line log
type Channel struct {
	name   string
	logger *log.Logger

	mu     sync.Mutex
	closer io.Closer
}

// New creates a channel that writes to w
func New(name string, w io.Writer) *Channel {
	return &Channel{
		name:   name,
		logger: log.New(w, fmt.Sprintf("[%s] ", name), log.LstdFlags),
	}
}

// Discard creates a channel that drops everything
func Discard() *Channel {
	return New(ChannelName, io.Discard)
}

// Open creates a channel appending to the file at path. Every process gets its own session id so
// interleaved runs can be told apart
func Open(name string, path string) (*Channel, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	c := New(name, f)
	c.closer = f
	c.AppendLine("session %s started", uuid.New().String())
	return c, nil
}

// Name returns the channel name
func (c *Channel) Name() string {
	return c.name
}

// AppendLine writes one formatted line
func (c *Channel) AppendLine(format string, args ...any) {
	c.logger.Printf(format, args...)
}

// Close releases the underlying file, if any
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close diagnostic channel: %w", err)
	}
	return nil
}
