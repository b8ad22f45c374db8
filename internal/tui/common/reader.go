package common

import (
	"srcmerge/internal/output"
	"srcmerge/pkg/types"
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Focused() FocusedPanel
	Destination() output.Destination
	Processing() bool
	SourceRoot() string
	// PanelView renders one panel at the given size.
	PanelView(p FocusedPanel, width, height int) string
	StatusView() string
	SpinnerView() string
	Keys() *types.KeyMap
	Width() int
	Height() int
}
