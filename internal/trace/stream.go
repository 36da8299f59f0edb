package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes every event as it arrives. Output is buffered; Close
// flushes it.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
	err    error
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{dst: w, buf: bufio.NewWriter(w), level: level, format: format}
}

// Emit writes ev. The first write error is kept for Close and later events
// are dropped; a broken trace sink never fails the analysis.
func (t *StreamTracer) Emit(ev Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	line := FormatEvent(&ev, t.format)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		_, t.err = t.buf.Write(line)
	}
}

func (t *StreamTracer) Level() Level { return t.level }

// Close flushes buffered events and closes a file destination.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.err = t.buf.Flush()
	}
	err := t.err
	if c, ok := t.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
