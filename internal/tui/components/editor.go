package components

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Editor is a single line text panel, used for the source path and the
// output file.
type Editor struct {
	title string
	input textinput.Model
}

var _ Panel = (*Editor)(nil)

func NewEditor(title, placeholder, value string) *Editor {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.SetValue(value)
	// A steady cursor needs no blink messages routed back to the editor.
	ti.Cursor.SetMode(cursor.CursorStatic)
	return &Editor{title: title, input: ti}
}

func (e *Editor) HandleKey(msg tea.KeyMsg, ctx *Context) tea.Cmd {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

func (e *Editor) View(ctx *Context) string {
	in := e.input
	if ctx.Width > 8 {
		in.Width = ctx.Width - 8
	}
	return Frame(e.title, in.View(), ctx)
}

// Value returns the current text.
func (e *Editor) Value() string {
	return e.input.Value()
}

func (e *Editor) SetValue(v string) {
	e.input.SetValue(v)
}

// Clear empties the editor.
func (e *Editor) Clear() {
	e.input.Reset()
}

// Focus gives the editor the cursor and moves it to the end of the value.
func (e *Editor) Focus() tea.Cmd {
	cmd := e.input.Focus()
	e.input.CursorEnd()
	return cmd
}

func (e *Editor) Blur() {
	e.input.Blur()
}

func (e *Editor) Focused() bool {
	return e.input.Focused()
}
