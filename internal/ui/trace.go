package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Trace is a box showing the driver log ("[HH:MM:SS] message" lines).
type Trace struct {
	Title    string
	Lines    []string
	Width    int
	MaxLines int // Show only the last MaxLines lines (0 = all)
}

// NewTrace creates a trace box from rendered log text
func NewTrace(text string) *Trace {
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return &Trace{
		Title: "Driver Log",
		Lines: lines,
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (t *Trace) SetWidth(width int) *Trace {
	t.Width = width
	return t
}

// SetMaxLines limits the box to the most recent lines
func (t *Trace) SetMaxLines(n int) *Trace {
	t.MaxLines = n
	return t
}

// Render returns the styled box as a string
func (t *Trace) Render() string {
	lines := t.Lines
	hidden := 0
	if t.MaxLines > 0 && len(lines) > t.MaxLines {
		hidden = len(lines) - t.MaxLines
		lines = lines[hidden:]
	}

	body := []string{TraceTitleStyle.Render(t.Title)}
	if hidden > 0 {
		body = append(body, StepNoteStyle.Render(fmt.Sprintf("... %d earlier lines", hidden)))
	}
	if len(lines) == 0 {
		body = append(body, StepNoteStyle.Render("(empty)"))
	}
	for _, line := range lines {
		body = append(body, renderTraceLine(line))
	}

	return TraceBoxStyle(clampWidth(t.Width)).Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

// String implements fmt.Stringer
func (t *Trace) String() string {
	return t.Render()
}

func renderTraceLine(line string) string {
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "] "); end > 0 {
			return TraceTimestampStyle.Render(line[:end+1]) + " " + TraceMessageStyle.Render(line[end+2:])
		}
	}
	return TraceMessageStyle.Render(line)
}
