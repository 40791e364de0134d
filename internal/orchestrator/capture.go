package orchestrator

import (
	"bytes"
	"sync"
)

const (
	// DefaultCaptureLimit is how much combined output is kept per process.
	// The tail is kept since the result line comes last.
	DefaultCaptureLimit = 5 * 1024 * 1024

	maxPendingLine = 64 * 1024
)

// captureBuffer keeps the last maxBytes written to it and hands every
// complete line to onLine as it arrives. os/exec drains each child's pipe
// into its own captureBuffer from a dedicated goroutine.
type captureBuffer struct {
	maxBytes int
	onLine   func(string)

	mu       sync.Mutex
	total    int64
	contents []byte
	pending  []byte
	overflow bool
}

func newCaptureBuffer(maxBytes int, onLine func(string)) *captureBuffer {
	if maxBytes <= 0 {
		maxBytes = DefaultCaptureLimit
	}
	return &captureBuffer{
		maxBytes: maxBytes,
		onLine:   onLine,
	}
}

func (b *captureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total += int64(len(p))
	b.contents = append(b.contents, p...)
	if len(b.contents) > b.maxBytes {
		b.contents = b.contents[len(b.contents)-b.maxBytes:]
		b.overflow = true
	}

	if b.onLine != nil {
		b.splitLines(p)
	}
	return len(p), nil
}

// splitLines must be called with mu held.
func (b *captureBuffer) splitLines(p []byte) {
	b.pending = append(b.pending, p...)
	for {
		i := bytes.IndexByte(b.pending, '\n')
		if i < 0 {
			break
		}
		b.onLine(string(bytes.TrimRight(b.pending[:i], "\r")))
		b.pending = b.pending[i+1:]
	}
	if len(b.pending) > maxPendingLine {
		b.onLine(string(b.pending))
		b.pending = nil
	}
}

// Flush emits an unterminated trailing line, if any.
func (b *captureBuffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) > 0 && b.onLine != nil {
		b.onLine(string(b.pending))
	}
	b.pending = nil
}

func (b *captureBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.contents)
}

// TotalBytes counts everything written, including what the tail dropped.
func (b *captureBuffer) TotalBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

func (b *captureBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}
