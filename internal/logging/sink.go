package logging

import (
	"strings"
	"sync"
	"time"
)

// DefaultSinkCapacity is the number of lines a driver trace retains.
const DefaultSinkCapacity = 200

// timestampLayout renders wall-clock time with second precision.
const timestampLayout = "15:04:05"

// Line is one immutable entry of the trace.
type Line struct {
	Timestamp string
	Message   string
}

// String formats the line as "[HH:MM:SS] message".
func (l Line) String() string {
	return "[" + l.Timestamp + "] " + l.Message
}

// Sink is a bounded FIFO of timestamped trace lines. Once full, appending
// drops the oldest lines first.
type Sink struct {
	mu       sync.Mutex
	lines    []Line
	capacity int

	// Now returns the current local time. Replaced in tests.
	Now func() time.Time
}

// NewSink creates an empty sink holding at most capacity lines.
// A non-positive capacity uses DefaultSinkCapacity.
func NewSink(capacity int) *Sink {
	if capacity <= 0 {
		capacity = DefaultSinkCapacity
	}
	return &Sink{
		lines:    make([]Line, 0, capacity),
		capacity: capacity,
		Now:      time.Now,
	}
}

// Append stamps message with the current time and adds it to the sink.
func (s *Sink) Append(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, Line{
		Timestamp: s.Now().Format(timestampLayout),
		Message:   message,
	})
	if over := len(s.lines) - s.capacity; over > 0 {
		// Copy down instead of reslicing so the backing array does not grow forever
		n := copy(s.lines, s.lines[over:])
		s.lines = s.lines[:n]
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (s *Sink) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of retained lines.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Render joins all retained lines with newlines, oldest first.
func (s *Sink) Render() string {
	lines := s.Lines()
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}

// Func returns Append as a plain logger function for collaborators that
// accept one.
func (s *Sink) Func() func(string) {
	return s.Append
}
