package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// UploadRunnerConfig holds configuration for an upload command
type UploadRunnerConfig struct {
	Title       string            // e.g., "Upload"
	Command     string            // e.g., "crosspoint upload"
	Params      map[string]string // Shown in the header
	Files       []string          // Destination names, in batch order
	Interactive bool              // Use the live Bubble Tea bar
	Output      io.Writer         // Default: os.Stdout

	// Troubleshoot returns tips for a failure. Optional.
	Troubleshoot func(error) []string

	// ErrorTitle names a failure in the result box. Defaults to
	// "<Title> failed".
	ErrorTitle func(error) string

	// Trace returns the driver log, printed after the result when set.
	Trace func() string
}

// UploadOperation performs the upload, reporting batch progress through
// report. It returns the details to show on success.
type UploadOperation func(ctx context.Context, report func(fraction float64, message string)) (map[string]string, error)

// UploadRunner drives the header, progress and result flow of an upload.
type UploadRunner struct {
	config      UploadRunnerConfig
	printer     *Printer
	progress    *Progress
	lastPrinted int
}

// NewUploadRunner creates a runner
func NewUploadRunner(config UploadRunnerConfig) *UploadRunner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	printer := NewPrinter(config.Output)
	p := NewProgress("", config.Files)
	p.SetWidth(printer.Width())
	return &UploadRunner{config: config, printer: printer, progress: p}
}

// Run executes op. Cancelling ctx (or ctrl+c in interactive mode) is
// passed to op through its context.
func (r *UploadRunner) Run(ctx context.Context, op UploadOperation) (map[string]string, error) {
	start := time.Now()
	r.printer.PrintHeader(r.config.Title, r.config.Command, r.config.Params)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		details map[string]string
		err     error
	)
	if r.config.Interactive {
		prog := StartUploadProgram(r.config.Output, r.config.Files, cancel)
		details, err = op(ctx, prog.Report)
		_ = prog.Finish(err)
	} else {
		details, err = op(ctx, r.plainReporter())
		r.progress.Finish(err)
		r.printRemaining()
	}

	r.printer.Newline()
	if err != nil {
		var tips []string
		if r.config.Troubleshoot != nil {
			tips = r.config.Troubleshoot(err)
		}
		title := r.config.Title + " failed"
		if r.config.ErrorTitle != nil {
			title = r.config.ErrorTitle(err)
		}
		r.printer.PrintError(title, err, tips)
	} else {
		if details == nil {
			details = make(map[string]string)
		}
		details["Duration"] = time.Since(start).Round(time.Millisecond).String()
		r.printer.PrintSuccess(r.config.Title+" complete", details)
	}

	if r.config.Trace != nil {
		if text := r.config.Trace(); text != "" {
			r.printer.Newline()
			r.printer.PrintTrace(text, 40)
		}
	}
	return details, err
}

// plainReporter prints one line per finished file for non-terminal output.
func (r *UploadRunner) plainReporter() func(float64, string) {
	printed := 0
	return func(fraction float64, message string) {
		r.progress.SetFraction(fraction)
		for printed < len(r.progress.Steps) && r.progress.Steps[printed].Status == StepComplete {
			r.printer.Println(r.progress.RenderStep(r.progress.Steps[printed]))
			printed++
		}
		r.lastPrinted = printed
	}
}

func (r *UploadRunner) printRemaining() {
	for _, step := range r.progress.Steps[r.lastPrinted:] {
		r.printer.Println(r.progress.RenderStep(step))
	}
	r.printer.Println(r.progress.RenderBar())
}

// Summary renders the per-file result of a batch as detail lines.
func Summary(names []string, sizes []int64) map[string]string {
	details := map[string]string{
		"Files": fmt.Sprintf("%d", len(names)),
	}
	var total int64
	for _, s := range sizes {
		total += s
	}
	details["Total size"] = FormatBytes(total)
	return details
}
