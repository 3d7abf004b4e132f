package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressMsg carries a batch fraction reported by the driver
type ProgressMsg struct {
	Fraction float64
	Message  string
}

// DoneMsg ends the upload program
type DoneMsg struct {
	Err error
}

// UploadModel is a Bubble Tea model showing a live upload bar. It quits on
// DoneMsg; ctrl+c only requests cancellation and waits for the driver.
type UploadModel struct {
	progress   *Progress
	spinner    spinner.Model
	message    string
	done       bool
	err        error
	cancelling bool
	cancel     func()
	cancelKey  key.Binding
}

// NewUploadModel creates a model for the given file names. cancel may be nil.
func NewUploadModel(names []string, cancel func()) UploadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StepRunningStyle

	p := NewProgress("", names)
	p.SetFraction(0)

	return UploadModel{
		progress: p,
		spinner:  s,
		message:  "Connecting...",
		cancel:   cancel,
		cancelKey: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c", "cancel"),
		),
	}
}

// Init implements tea.Model
func (m UploadModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.cancelKey) && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.SetWidth(clampWidth(msg.Width))
		return m, nil

	case ProgressMsg:
		m.progress.SetFraction(msg.Fraction)
		if msg.Message != "" {
			m.message = msg.Message
		}
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.progress.Finish(msg.Err)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m UploadModel) View() string {
	var b strings.Builder

	switch {
	case m.done && m.err == nil:
		b.WriteString(ProgressLabelStyle.Render(StepCompleteStyle.Render(SuccessMarker) + " Transfer complete"))
	case m.done:
		b.WriteString(ProgressLabelStyle.Render(ErrorTitleStyle.Render(FailureMarker) + " Transfer failed"))
	case m.cancelling:
		b.WriteString(ProgressLabelStyle.Render(m.spinner.View() + " Cancelling..."))
	default:
		b.WriteString(ProgressLabelStyle.Render(m.spinner.View() + " " + m.message))
	}
	b.WriteString("\n\n")
	b.WriteString(m.progress.Render())
	b.WriteString("\n")
	if !m.done && !m.cancelling {
		b.WriteString("\n")
		b.WriteString(StepNoteStyle.Render("  " + m.cancelKey.Help().Key + " to " + m.cancelKey.Help().Desc))
		b.WriteString("\n")
	}
	return b.String()
}

// Fraction returns the last fraction shown
func (m UploadModel) Fraction() float64 {
	return m.progress.Fraction
}

// UploadProgram runs an UploadModel while the driver uploads.
type UploadProgram struct {
	program *tea.Program
	done    chan error
}

// StartUploadProgram starts the program in the background
func StartUploadProgram(out io.Writer, names []string, cancel func()) *UploadProgram {
	if out == nil {
		out = os.Stdout
	}
	p := tea.NewProgram(NewUploadModel(names, cancel), tea.WithOutput(out))
	up := &UploadProgram{program: p, done: make(chan error, 1)}
	go func() {
		_, err := p.Run()
		up.done <- err
	}()
	return up
}

// Report forwards a driver progress report to the program
func (u *UploadProgram) Report(fraction float64, message string) {
	u.program.Send(ProgressMsg{Fraction: fraction, Message: message})
}

// Finish renders the final state and waits for the program to exit
func (u *UploadProgram) Finish(err error) error {
	u.program.Send(DoneMsg{Err: err})
	return <-u.done
}

// Printer prints UI components to a writer.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintTrace prints the driver log box
func (p *Printer) PrintTrace(text string, maxLines int) {
	p.Println(NewTrace(text).SetWidth(p.width).SetMaxLines(maxLines).Render())
}
