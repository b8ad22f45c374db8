package components

import (
	"fmt"
	"testing"

	"srcmerge/internal/output"
	"srcmerge/internal/selection"
	"srcmerge/internal/source"
	"srcmerge/internal/tokens"
	"srcmerge/pkg/testutils"
	"srcmerge/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

var (
	keyUp     = tea.KeyMsg{Type: tea.KeyUp}
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
	keyEnd    = tea.KeyMsg{Type: tea.KeyEnd}
	keyHome   = tea.KeyMsg{Type: tea.KeyHome}
	keyToggle = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func files(paths ...string) []source.SourceFile {
	out := make([]source.SourceFile, len(paths))
	for i, p := range paths {
		out[i] = source.SourceFile{Path: p, Size: 1}
	}
	return out
}

func newContext(sel *selection.Selection, height int) *Context {
	keys := types.DefaultKeyMap()
	return &Context{
		Keys:        &keys,
		Selection:   sel,
		Tracker:     tokens.NewTracker(tokens.Whitespace{}, 1),
		Destination: output.File,
		Focused:     true,
		Width:       60,
		Height:      height,
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, n, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{-1, 5, 0},
		{2, 5, 2},
		{5, 5, 4},
		{9, 2, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.v, tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, clamp(tt.v, tt.n))
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name              string
		cursor, height, n int
		want              int
	}{
		{"unbounded height", 7, 0, 10, 0},
		{"everything fits", 3, 5, 4, 0},
		{"cursor in first page", 2, 3, 10, 0},
		{"cursor past first page", 5, 3, 10, 3},
		{"cursor on last row", 9, 3, 10, 7},
		{"cursor beyond list", 12, 3, 10, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, window(tt.cursor, tt.height, tt.n))
		})
	}
}

func TestFilesEmptyList(t *testing.T) {
	f := NewFiles()
	ctx := newContext(selection.New(), 3)

	for _, k := range []tea.KeyMsg{keyDown, keyUp, keyEnd, keyToggle} {
		f.HandleKey(k, ctx)
		assert.Equal(t, 0, f.Cursor())
	}
	assert.Contains(t, testutils.StripANSI(f.View(ctx)), "no files")
}

func TestFilesCursorAfterListShrinks(t *testing.T) {
	sel := selection.New()
	sel.Rebuild(files("a.go", "b.go", "c.go", "d.go", "e.go"))
	f := NewFiles()
	ctx := newContext(sel, 2)

	f.HandleKey(keyEnd, ctx)
	assert.Equal(t, 4, f.Cursor())
	view := testutils.StripANSI(f.View(ctx))
	assert.Contains(t, view, "d.go")
	assert.Contains(t, view, "e.go")
	assert.NotContains(t, view, "a.go", "the window follows the cursor")

	sel.Rebuild(files("a.go", "b.go"))
	view = testutils.StripANSI(f.View(ctx))
	assert.Contains(t, view, "a.go")
	assert.Contains(t, view, "b.go")

	// Toggling clamps first, so it hits the last remaining row.
	f.HandleKey(keyToggle, ctx)
	assert.Equal(t, 1, f.Cursor())
	assert.False(t, sel.IsSelected("b.go"))
	assert.True(t, sel.IsSelected("a.go"))

	f.HandleKey(keyDown, ctx)
	assert.Equal(t, 1, f.Cursor())
	f.HandleKey(keyHome, ctx)
	assert.Equal(t, 0, f.Cursor())
}

func TestFiltersCursorAfterListShrinks(t *testing.T) {
	sel := selection.New()
	sel.Rebuild(files("a.go", "b.md", "c.txt", "d.yaml"))
	f := NewFilters()
	ctx := newContext(sel, 2)

	f.HandleKey(keyEnd, ctx)
	assert.Equal(t, 3, f.Cursor())
	view := testutils.StripANSI(f.View(ctx))
	assert.Contains(t, view, ".yaml (1)")
	assert.NotContains(t, view, ".go (1)")

	sel.Rebuild(files("a.go"))
	assert.Contains(t, testutils.StripANSI(f.View(ctx)), ".go (1)")

	f.HandleKey(keyToggle, ctx)
	assert.Equal(t, 0, f.Cursor())
	assert.False(t, sel.ExtensionSelected("go"))

	sel.Rebuild(nil)
	f.HandleKey(keyUp, ctx)
	assert.Equal(t, 0, f.Cursor())
	assert.Contains(t, testutils.StripANSI(f.View(ctx)), "no extensions")
}

func TestOutputCyclesDestination(t *testing.T) {
	o := NewOutput()
	ctx := newContext(selection.New(), 3)

	o.HandleKey(keyDown, ctx)
	assert.Equal(t, output.File.Next(), ctx.Destination)
	o.HandleKey(keyUp, ctx)
	assert.Equal(t, output.File, ctx.Destination)
}
