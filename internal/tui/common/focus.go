// Package common holds the focus state machine and the read-only view of
// the controller shared by the tui packages.
package common

import "srcmerge/internal/output"

// FocusedPanel is the region that receives keystrokes.
type FocusedPanel int

const (
	SourcePath FocusedPanel = iota
	Filters
	SourceFiles
	Output
	OutputFile
)

// Panels lists every panel in cycle order.
var Panels = []FocusedPanel{SourcePath, Filters, SourceFiles, Output, OutputFile}

func (p FocusedPanel) String() string {
	switch p {
	case SourcePath:
		return "Source Path"
	case Filters:
		return "Filters"
	case SourceFiles:
		return "Source Files"
	case Output:
		return "Output"
	case OutputFile:
		return "Output File"
	default:
		return "Unknown"
	}
}

// Visible reports whether p takes part in the cycle for dest. The output
// file panel is hidden for clipboard-only merges.
func Visible(p FocusedPanel, dest output.Destination) bool {
	return p != OutputFile || dest != output.Clipboard
}

// Next returns the panel after p for dest.
func Next(p FocusedPanel, dest output.Destination) FocusedPanel {
	switch p {
	case SourcePath:
		return Filters
	case Filters:
		return SourceFiles
	case SourceFiles:
		return Output
	case Output:
		if dest == output.Clipboard {
			return SourcePath
		}
		return OutputFile
	default:
		return SourcePath
	}
}

// Prev is the inverse of Next for the same dest.
func Prev(p FocusedPanel, dest output.Destination) FocusedPanel {
	switch p {
	case SourcePath:
		if dest == output.Clipboard {
			return Output
		}
		return OutputFile
	case Filters:
		return SourcePath
	case SourceFiles:
		return Filters
	case OutputFile:
		// Unreachable for clipboard-only merges; both branches agree.
		return Output
	default:
		return SourceFiles
	}
}
