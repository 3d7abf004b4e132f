// Package device presents a CrossPoint reader to a host application as a
// removable drive.
//
// A Driver owns one Session. Detect runs discovery through a Coordinator,
// which rate-limits attempts to one per DebounceWindow whatever their
// outcome. A successful attempt caches the reader's host and port and moves
// the session to Connected; Eject and Stop move it back to Disconnected.
//
// Upload sends an ordered batch of local files through a transfer.Transferer
// one at a time and reports a single progress fraction for the whole batch:
//
//	fraction = (index + sent/total) / count
//
// The fraction never decreases and the last value reported is exactly 1.0.
// Transfer errors are returned unchanged so callers can inspect them with
// errors.As(err, *transfer.Error).
//
// The reader exposes no library, so Books is always empty, Delete always
// fails with a *ControlError and space queries return a fixed nominal size.
package device
