package testutil

import (
	"bytes"
	"log/slog"
	"sync"

	"github.com/eliseohh/homeworkbot/internal/logging"
)

// Buffer is a goroutine-safe bytes.Buffer for capturing log output.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewBufferLogger returns a debug-level, colourless logger backed by a
// buffer, and the buffer for assertions.
func NewBufferLogger() (*slog.Logger, *Buffer) {
	buf := &Buffer{}
	return logging.New(buf, "debug", false), buf
}
