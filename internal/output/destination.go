// Package output renders the merged artifact and delivers it to a file, the
// clipboard, or both.
package output

import (
	"strings"

	"srcmerge/internal/errors"
)

// Destination selects where a merge goes.
type Destination int

const (
	File Destination = iota
	Clipboard
	FileAndClipboard
)

var destinationNames = []string{"file", "clipboard", "file_and_clipboard"}

// String returns the config name of d.
func (d Destination) String() string {
	if d < File || d > FileAndClipboard {
		return "unknown"
	}
	return destinationNames[d]
}

// Label is the human readable name shown in the UI.
func (d Destination) Label() string {
	switch d {
	case File:
		return "File"
	case Clipboard:
		return "Clipboard"
	case FileAndClipboard:
		return "File + Clipboard"
	default:
		return "Unknown"
	}
}

// WritesFile reports whether d produces an output file.
func (d Destination) WritesFile() bool {
	return d == File || d == FileAndClipboard
}

// Next cycles File -> Clipboard -> FileAndClipboard -> File.
func (d Destination) Next() Destination {
	return (d + 1) % 3
}

// Prev is the inverse of Next.
func (d Destination) Prev() Destination {
	return (d + 2) % 3
}

// Destinations lists every destination in cycle order.
func Destinations() []Destination {
	return []Destination{File, Clipboard, FileAndClipboard}
}

// ParseDestination accepts the config names plus "both" and "clip".
func ParseDestination(s string) (Destination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "":
		return File, nil
	case "clipboard", "clip":
		return Clipboard, nil
	case "file_and_clipboard", "file+clipboard", "both":
		return FileAndClipboard, nil
	}
	return File, errors.NewConfigError("unknown output destination", s, errors.InvalidConfig, nil)
}
