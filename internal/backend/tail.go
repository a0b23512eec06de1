package backend

import (
	"strings"
	"sync"
)

// tailBuffer keeps the last complete lines written to it. Carriage returns
// end a line too, so progress bars do not accumulate into one huge entry.
type tailBuffer struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial strings.Builder
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = 40
	}
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range p {
		switch b {
		case '\n', '\r':
			t.flushLocked()
		default:
			t.partial.WriteByte(b)
		}
	}
	return len(p), nil
}

func (t *tailBuffer) flushLocked() {
	line := strings.TrimRight(t.partial.String(), " \t")
	t.partial.Reset()
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = append(t.lines[:0], t.lines[len(t.lines)-t.limit:]...)
	}
}

// Lines returns the retained lines including any unterminated final line.
func (t *tailBuffer) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.partial.Len() > 0 {
		t.flushLocked()
	}
	return append([]string(nil), t.lines...)
}
