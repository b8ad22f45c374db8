package components

import (
	"fmt"
	"strings"

	"srcmerge/internal/tokens"
	"srcmerge/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// Files lists the loaded files with their selection and token status.
type Files struct {
	cursor int
}

var _ Panel = (*Files)(nil)

func NewFiles() *Files {
	return &Files{}
}

func (f *Files) HandleKey(msg tea.KeyMsg, ctx *Context) tea.Cmd {
	files := ctx.Selection.Files()
	f.cursor = clamp(f.cursor, len(files))
	switch {
	case key.Matches(msg, ctx.Keys.Up):
		f.cursor = clamp(f.cursor-1, len(files))
	case key.Matches(msg, ctx.Keys.Down):
		f.cursor = clamp(f.cursor+1, len(files))
	case key.Matches(msg, ctx.Keys.Top):
		f.cursor = 0
	case key.Matches(msg, ctx.Keys.Bottom):
		f.cursor = clamp(len(files)-1, len(files))
	case key.Matches(msg, ctx.Keys.Toggle):
		if len(files) > 0 {
			ctx.Selection.ToggleFile(files[f.cursor].Path)
		}
	}
	return nil
}

// Cursor returns the highlighted row.
func (f *Files) Cursor() int {
	return f.cursor
}

// glyph renders a token status as a short column.
func glyph(st tokens.Status) string {
	switch st.State {
	case tokens.Counting:
		return styles.Theme.Info.Render("…")
	case tokens.Counted:
		return humanize.Comma(int64(st.Count))
	case tokens.Failed:
		return styles.Theme.Error.Render("!")
	default:
		return styles.Theme.Dim.Render("·")
	}
}

func (f *Files) View(ctx *Context) string {
	files := ctx.Selection.Files()
	title := fmt.Sprintf("Source Files (%d/%d) · %s", ctx.Selection.Count(), len(files), ctx.Summary)
	if len(files) == 0 {
		return Frame(title, styles.Theme.Dim.Render("no files"), ctx)
	}

	cursor := clamp(f.cursor, len(files))
	start := window(cursor, ctx.Height, len(files))
	end := len(files)
	if ctx.Height > 0 && start+ctx.Height < end {
		end = start + ctx.Height
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		file := files[i]
		mark, style := "[ ]", styles.Theme.Unselected
		if ctx.Selection.IsSelected(file.Path) {
			mark, style = "[x]", styles.Theme.Selected
		}
		row := fmt.Sprintf("%s %s", mark, file.Path)
		if i == cursor && ctx.Focused {
			row = styles.Theme.Cursor.Render(row)
		} else {
			row = style.Render(row)
		}
		meta := styles.Theme.Dim.Render(humanize.Bytes(uint64(file.Size)))
		b.WriteString(fmt.Sprintf("%s  %s  %s\n", row, glyph(ctx.Tracker.Status(file.Path)), meta))
	}
	return Frame(title, b.String(), ctx)
}
