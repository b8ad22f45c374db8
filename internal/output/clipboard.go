package output

import (
	"srcmerge/internal/errors"

	"github.com/atotto/clipboard"
)

// ClipboardSink receives merged text.
type ClipboardSink interface {
	Copy(text string) error
}

// SystemClipboard copies through the platform clipboard utilities.
type SystemClipboard struct{}

// Copy writes text to the system clipboard.
func (SystemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return errors.NewSinkError("clipboard not supported on this system", "clipboard", errors.ClipboardFailed, nil)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errors.NewSinkError("failed to copy to clipboard", "clipboard", errors.ClipboardFailed, err)
	}
	return nil
}
