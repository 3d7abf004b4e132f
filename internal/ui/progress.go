package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a file in a batch
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently transferring
	StepComplete                   // Confirmed by the reader
	StepFailed                     // Transfer failed
	StepSkipped                    // Not attempted because an earlier file failed
)

// Step is one file of an upload batch
type Step struct {
	Number  int
	Name    string
	Status  StepStatus
	Message string // Optional note (e.g., "1.2 MB")
}

// Progress renders an aggregate bar over a list of files. The running file
// is derived from the batch fraction, so callers only report one number.
type Progress struct {
	Label    string
	Steps    []Step
	Fraction float64
	Width    int
	ShowBar  bool
	ShowList bool
	bar      progress.Model
}

// NewProgress creates a progress display with one step per name
func NewProgress(label string, names []string) *Progress {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Number: i + 1, Name: name, Status: StepPending}
	}

	p := &Progress{
		Label:    label,
		Steps:    steps,
		ShowBar:  true,
		ShowList: true,
	}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the terminal width for responsive rendering
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20 // Leave room for percentage and file count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// SetFraction records the batch fraction and updates file states.
func (p *Progress) SetFraction(fraction float64) {
	p.Fraction = math.Max(0, math.Min(1, fraction))

	n := len(p.Steps)
	if n == 0 {
		return
	}
	done := int(math.Floor(p.Fraction*float64(n) + 1e-9))
	for i := range p.Steps {
		switch {
		case i < done:
			p.Steps[i].Status = StepComplete
		case i == done:
			p.Steps[i].Status = StepRunning
		default:
			p.Steps[i].Status = StepPending
		}
	}
}

// Current returns the 1-based number of the running file, or the count
// once all files are complete.
func (p *Progress) Current() int {
	for _, s := range p.Steps {
		if s.Status == StepRunning || s.Status == StepFailed {
			return s.Number
		}
	}
	return len(p.Steps)
}

// Finish marks the batch done. On error the running file fails and the
// rest are skipped.
func (p *Progress) Finish(err error) {
	if err == nil {
		p.SetFraction(1)
		return
	}
	failed := false
	for i := range p.Steps {
		switch {
		case p.Steps[i].Status == StepComplete:
		case !failed:
			p.Steps[i].Status = StepFailed
			failed = true
		default:
			p.Steps[i].Status = StepSkipped
		}
	}
}

// SetNote attaches a note to the file with the given name
func (p *Progress) SetNote(name, message string) {
	for i := range p.Steps {
		if p.Steps[i].Name == name {
			p.Steps[i].Message = message
		}
	}
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	if p.ShowBar {
		b.WriteString(p.RenderBar())
		b.WriteString("\n\n")
	}

	if p.ShowList {
		lines := make([]string, 0, len(p.Steps))
		for _, step := range p.Steps {
			lines = append(lines, p.RenderStep(step))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}

	return b.String()
}

// RenderBar renders the bar, percentage and file counter on one line
func (p *Progress) RenderBar() string {
	barView := p.bar.ViewAs(p.Fraction)
	percentStr := fmt.Sprintf("%3.0f%%", p.Fraction*100)
	countStr := fmt.Sprintf("[%d/%d]", p.Current(), len(p.Steps))

	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %s  %s", barView, percentStr, countStr))
}

// RenderStep renders a single file line
func (p *Progress) RenderStep(step Step) string {
	prefix := fmt.Sprintf("  [%d/%d]", step.Number, len(p.Steps))

	var marker string
	var style lipgloss.Style
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(style.Render(step.Name))

	// Align markers on one column
	padding := 45 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}

	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
