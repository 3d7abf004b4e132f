// Package ui renders terminal output for the crosspoint CLI with Lipgloss
// and Bubble Tea.
//
// Commands print a Header, do their work, then print a Result box. Uploads
// go through an UploadRunner, which shows a live progress bar (an
// UploadModel driven by ProgressMsg values) when stdout is a terminal and
// one line per finished file otherwise. The driver reports a single batch
// fraction; the file being transferred is derived from it.
//
// zap logging is controlled separately by CROSSPOINT_LOG_LEVEL and is
// silent by default so it does not interleave with this output.
package ui
