package memory

import (
	"sync"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

const defaultActivityCapacity = 256

// ActivityLog is a ring buffer of recent activity lines. Record is called
// from request handlers; Drain from the log-scan worker.
type ActivityLog struct {
	mu      sync.Mutex
	buf     []domain.LogLine
	next    int // write position
	pending int // recorded lines not yet drained
}

var _ ports.ActivitySource = (*ActivityLog)(nil)

func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = defaultActivityCapacity
	}
	return &ActivityLog{buf: make([]domain.LogLine, capacity)}
}

func (a *ActivityLog) Record(line domain.LogLine) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buf[a.next] = line
	a.next = (a.next + 1) % len(a.buf)
	if a.pending < len(a.buf) {
		a.pending++
	}
}

// Drain hands out the oldest unconsumed lines, at most max of them (all when
// max <= 0). The rest stay pending for the next call. Once more than the
// buffer's capacity is pending, the oldest lines are overwritten unread.
func (a *ActivityLog) Drain(max int) []domain.LogLine {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.pending
	if max > 0 && n > max {
		n = max
	}
	first := a.next - a.pending + len(a.buf)
	out := make([]domain.LogLine, n)
	for i := 0; i < n; i++ {
		out[i] = a.buf[(first+i)%len(a.buf)]
	}
	a.pending -= n
	return out
}

// SampleActivity replays a fixed set of synthetic lines on every drain. It
// stands in for a real activity tail in demos.
type SampleActivity struct {
	Lines []domain.LogLine
}

var DefaultSampleLines = []domain.LogLine{
	"Login attempt from unknown IP: 192.168.1.5",
	"High frequency API calls from User_772",
	"Suspicious asset update: Price drop 90%",
	"XSS attempt blocked at /api/upload",
}

func (s SampleActivity) Drain(max int) []domain.LogLine {
	lines := s.Lines
	if lines == nil {
		lines = DefaultSampleLines
	}
	if max > 0 && len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	out := make([]domain.LogLine, len(lines))
	copy(out, lines)
	return out
}
