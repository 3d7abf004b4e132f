package logging

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSink_AppendAndRender(t *testing.T) {
	sink := NewSink(DefaultSinkCapacity)
	sink.Now = fixedClock(time.Date(2025, 11, 25, 10, 30, 45, 0, time.Local))

	sink.Append("first")
	sink.Append("second")

	want := "[10:30:45] first\n[10:30:45] second"
	if got := sink.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestSink_EmptyRender(t *testing.T) {
	sink := NewSink(0)

	if got := sink.Render(); got != "" {
		t.Errorf("Render() on empty sink = %q, want empty string", got)
	}
	if sink.capacity != DefaultSinkCapacity {
		t.Errorf("capacity = %d, want %d", sink.capacity, DefaultSinkCapacity)
	}
}

func TestSink_DropsOldestOnOverflow(t *testing.T) {
	sink := NewSink(DefaultSinkCapacity)

	for i := 0; i < 205; i++ {
		sink.Append(fmt.Sprintf("message %d", i))
	}

	lines := sink.Lines()
	if len(lines) != 200 {
		t.Fatalf("len(Lines()) = %d, want 200", len(lines))
	}

	if lines[0].Message != "message 5" {
		t.Errorf("oldest retained = %q, want %q", lines[0].Message, "message 5")
	}
	if lines[199].Message != "message 204" {
		t.Errorf("newest retained = %q, want %q", lines[199].Message, "message 204")
	}

	for i := 1; i < len(lines); i++ {
		var prev, cur int
		fmt.Sscanf(lines[i-1].Message, "message %d", &prev)
		fmt.Sscanf(lines[i].Message, "message %d", &cur)
		if cur != prev+1 {
			t.Fatalf("order broken at %d: %q after %q", i, lines[i].Message, lines[i-1].Message)
		}
	}
}

func TestSink_LinesIsCopy(t *testing.T) {
	sink := NewSink(3)
	sink.Append("a")

	lines := sink.Lines()
	lines[0].Message = "mutated"

	if sink.Lines()[0].Message != "a" {
		t.Error("Lines() should return a copy")
	}
}

func TestSink_TimestampFormat(t *testing.T) {
	sink := NewSink(1)
	sink.Now = fixedClock(time.Date(2025, 1, 2, 3, 4, 5, 999, time.Local))
	sink.Append("x")

	line := sink.Lines()[0]
	if line.Timestamp != "03:04:05" {
		t.Errorf("Timestamp = %q, want 03:04:05", line.Timestamp)
	}
	if !strings.HasPrefix(line.String(), "[03:04:05] ") {
		t.Errorf("String() = %q, want [03:04:05] prefix", line.String())
	}
}

func TestSink_Func(t *testing.T) {
	sink := NewSink(2)
	logf := sink.Func()
	logf("via func")

	if sink.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", sink.Len())
	}
}
