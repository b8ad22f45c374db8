package components

import (
	"strings"

	"srcmerge/internal/output"
	"srcmerge/internal/selection"
	"srcmerge/internal/tokens"
	"srcmerge/internal/tui/styles"
	"srcmerge/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
)

// Context is the controller state a panel reads and may change while
// handling a key. The controller copies Destination back afterwards.
type Context struct {
	Keys        *types.KeyMap
	Selection   *selection.Selection
	Tracker     *tokens.Tracker
	Summary     tokens.Summary
	Destination output.Destination
	Focused     bool
	Width       int
	Height      int
}

// Panel is one focusable region of the screen.
type Panel interface {
	HandleKey(msg tea.KeyMsg, ctx *Context) tea.Cmd
	View(ctx *Context) string
}

// Frame draws a bordered box with title around body, highlighted when the
// panel is focused.
func Frame(title, body string, ctx *Context) string {
	box := styles.Theme.Panel
	head := styles.Theme.PanelTitle
	if ctx.Focused {
		box = styles.Theme.FocusedPanel
		head = styles.Theme.FocusedTitle
	}
	if ctx.Width > 4 {
		box = box.Width(ctx.Width - 2)
	}
	return box.Render(head.Render(title) + "\n" + strings.TrimRight(body, "\n"))
}

func clamp(v, n int) int {
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// window returns the first row to draw so that cursor stays visible in
// height rows.
func window(cursor, height, n int) int {
	if height <= 0 || n <= height {
		return 0
	}
	start := cursor - height + 1
	if start < 0 {
		start = 0
	}
	if start > n-height {
		start = n - height
	}
	return start
}
