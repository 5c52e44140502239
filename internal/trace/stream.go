package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer formats events as they arrive. Output to a file is buffered
// until Flush; the standard streams are written through.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{dst: w, level: level, format: format}
	if f, ok := w.(*os.File); ok && !isStdStream(f) {
		t.buf = bufio.NewWriter(f)
	}
	return t
}

func isStdStream(f *os.File) bool {
	return f == os.Stderr || f == os.Stdout
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// Best effort: a failed trace write never fails the build.
	if t.buf != nil {
		_, _ = t.buf.Write(data)
		return
	}
	_, _ = t.dst.Write(data)
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked()
}

func (t *StreamTracer) flushLocked() error {
	if t.buf != nil {
		return t.buf.Flush()
	}
	return nil
}

// Close flushes and closes the output unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.flushLocked(); err != nil {
		return err
	}
	if f, ok := t.dst.(*os.File); ok && isStdStream(f) {
		return nil
	}
	if c, ok := t.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
