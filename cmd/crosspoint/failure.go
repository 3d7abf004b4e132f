package main

import (
	"errors"

	"github.com/muurk/crosspoint/internal/device"
	"github.com/muurk/crosspoint/internal/transfer"
	"github.com/muurk/crosspoint/internal/ui"
)

// failureTitle names an upload failure after its transfer error type.
func failureTitle(err error) string {
	var te *transfer.Error
	if errors.As(err, &te) {
		return "Upload failed: " + transfer.GetShortErrorMessage(err)
	}
	return "Upload failed"
}

// troubleshooter returns the tips shown under a failed upload. discovered
// reports whether the target address came from discovery or from config.
func troubleshooter(discovered bool) func(error) []string {
	return func(err error) []string {
		if device.IsControlError(err) {
			return []string{"Only files stored on disk can be sent"}
		}

		var te *transfer.Error
		if !errors.As(err, &te) {
			return nil
		}
		tips := ui.SplitHint(transfer.GetTroubleshootingHint(err))
		if transfer.IsNetworkError(err) && !discovered {
			tips = append(tips, "The reader did not answer discovery; pass its address with --device")
		}
		if transfer.IsRejected(err) {
			tips = append(tips, "Files listed as done above are already on the reader")
		}
		return tips
	}
}
