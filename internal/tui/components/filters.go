package components

import (
	"fmt"
	"strings"

	"srcmerge/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Filters lists the extensions of the loaded files. Toggling one selects or
// deselects every file with it.
type Filters struct {
	cursor int
}

var _ Panel = (*Filters)(nil)

func NewFilters() *Filters {
	return &Filters{}
}

func (f *Filters) HandleKey(msg tea.KeyMsg, ctx *Context) tea.Cmd {
	exts := ctx.Selection.Extensions()
	f.cursor = clamp(f.cursor, len(exts))
	switch {
	case key.Matches(msg, ctx.Keys.Up):
		f.cursor = clamp(f.cursor-1, len(exts))
	case key.Matches(msg, ctx.Keys.Down):
		f.cursor = clamp(f.cursor+1, len(exts))
	case key.Matches(msg, ctx.Keys.Top):
		f.cursor = 0
	case key.Matches(msg, ctx.Keys.Bottom):
		f.cursor = clamp(len(exts)-1, len(exts))
	case key.Matches(msg, ctx.Keys.Toggle):
		if len(exts) > 0 {
			ctx.Selection.ToggleExtension(exts[f.cursor])
		}
	}
	return nil
}

// Cursor returns the highlighted row.
func (f *Filters) Cursor() int {
	return f.cursor
}

func (f *Filters) View(ctx *Context) string {
	exts := ctx.Selection.Extensions()
	title := fmt.Sprintf("Filters (%d/%d)", len(ctx.Selection.SelectedExtensions()), len(exts))
	if len(exts) == 0 {
		return Frame(title, styles.Theme.Dim.Render("no extensions"), ctx)
	}

	cursor := clamp(f.cursor, len(exts))
	start := window(cursor, ctx.Height, len(exts))
	end := len(exts)
	if ctx.Height > 0 && start+ctx.Height < end {
		end = start + ctx.Height
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		ext := exts[i]
		mark, style := "[ ]", styles.Theme.Unselected
		if ctx.Selection.ExtensionSelected(ext) {
			mark, style = "[x]", styles.Theme.Selected
		}
		name := "." + ext
		if ext == "" {
			name = "(none)"
		}
		row := fmt.Sprintf("%s %s (%d)", mark, name, ctx.Selection.ExtensionCount(ext))
		if i == cursor && ctx.Focused {
			row = styles.Theme.Cursor.Render(row)
		} else {
			row = style.Render(row)
		}
		b.WriteString(row + "\n")
	}
	return Frame(title, b.String(), ctx)
}
