package components

import (
	"strings"

	"srcmerge/internal/output"
	"srcmerge/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Output picks the merge destination.
type Output struct{}

var _ Panel = (*Output)(nil)

func NewOutput() *Output {
	return &Output{}
}

func (o *Output) HandleKey(msg tea.KeyMsg, ctx *Context) tea.Cmd {
	switch {
	case key.Matches(msg, ctx.Keys.Up), key.Matches(msg, ctx.Keys.Left):
		ctx.Destination = ctx.Destination.Prev()
	case key.Matches(msg, ctx.Keys.Down), key.Matches(msg, ctx.Keys.Right), key.Matches(msg, ctx.Keys.Toggle):
		ctx.Destination = ctx.Destination.Next()
	}
	return nil
}

func (o *Output) View(ctx *Context) string {
	var b strings.Builder
	for _, d := range output.Destinations() {
		if d == ctx.Destination {
			b.WriteString(styles.Theme.Selected.Render("(•) " + d.Label()))
		} else {
			b.WriteString(styles.Theme.Unselected.Render("( ) " + d.Label()))
		}
		b.WriteString("\n")
	}
	return Frame("Output", b.String(), ctx)
}
