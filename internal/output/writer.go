package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"srcmerge/internal/errors"
	"srcmerge/internal/log"
	"srcmerge/internal/source"

	"github.com/dustin/go-humanize"
	"github.com/google/renameio/v2"
)

// Request describes one merge for a Writer.
type Request struct {
	Entries     []Entry
	Destination Destination
	Path        string
}

// Writer renders entries and delivers them. It returns the rendered text so
// callers can forward it elsewhere.
type Writer interface {
	Write(ctx context.Context, req Request) (string, error)
}

// SinkWriter writes files atomically and copies clipboard-only merges
// itself. The second copy of a FileAndClipboard merge is left to the caller.
type SinkWriter struct {
	Clipboard ClipboardSink
}

var _ Writer = (*SinkWriter)(nil)

// NewWriter returns a SinkWriter using clip for clipboard-only merges.
func NewWriter(clip ClipboardSink) *SinkWriter {
	return &SinkWriter{Clipboard: clip}
}

// Write renders req and delivers it to its destination.
func (w *SinkWriter) Write(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewSinkError("merge cancelled", req.Path, errors.WriteFailed, err)
	}
	text := Render(req.Entries)

	if req.Destination.WritesFile() {
		if strings.TrimSpace(req.Path) == "" {
			return "", errors.NewSinkError("no output file set", "", errors.WriteFailed, nil)
		}
		if err := WriteFileAtomic(req.Path, []byte(text)); err != nil {
			return "", errors.NewSinkError("failed to write output", req.Path, errors.WriteFailed, err)
		}
		log.LogWithFields(
			log.F("path", req.Path),
			log.F("files", len(req.Entries)),
			log.F("size", humanize.Bytes(uint64(len(text)))),
		).Info("wrote merged output")
	}

	if req.Destination == Clipboard {
		if w.Clipboard == nil {
			return "", errors.NewSinkError("no clipboard available", "clipboard", errors.ClipboardFailed, nil)
		}
		if err := w.Clipboard.Copy(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

// WriteFileAtomic writes data to a hidden temp file next to path and renames
// it into place, so readers never see a partial file. Missing parent
// directories are created.
func WriteFileAtomic(path string, data []byte) error {
	path = source.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0644)
}

// IsTempFile reports whether name is a pending temp file of
// WriteFileAtomic for target.
func IsTempFile(name, target string) bool {
	if filepath.Dir(name) != filepath.Dir(target) {
		return false
	}
	prefix := "." + filepath.Base(target)
	rest := strings.TrimPrefix(filepath.Base(name), prefix)
	if rest == filepath.Base(name) || rest == "" {
		return false
	}
	return strings.Trim(rest, "0123456789") == ""
}
