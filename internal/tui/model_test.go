package tui

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"srcmerge/internal/config"
	"srcmerge/internal/errors"
	"srcmerge/internal/output"
	"srcmerge/internal/source"
	"srcmerge/internal/tokens"
	"srcmerge/internal/tui/common"
	"srcmerge/internal/tui/messages"
	"srcmerge/internal/watch"
	"srcmerge/pkg/testutils"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (f *fakeClipboard) Copy(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type harness struct {
	m     *Model
	cfg   *config.Config
	clip  *fakeClipboard
	opens *atomic.Int32
	out   string
}

func newHarness(t *testing.T, dir string, configure func(*config.Config)) *harness {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.Source.Path = dir
	cfg.Output.Path = filepath.Join(t.TempDir(), "merged.md")
	if configure != nil {
		configure(cfg)
	}

	h := &harness{cfg: cfg, clip: &fakeClipboard{}, opens: &atomic.Int32{}, out: cfg.Output.Path}
	opener := func(ctx context.Context, location string) (source.TextSource, error) {
		h.opens.Add(1)
		return source.OpenLocal(location)
	}
	m, err := New(Options{
		Config:    cfg,
		Opener:    opener,
		Counter:   tokens.Whitespace{},
		Clipboard: h.clip,
	})
	require.NoError(t, err)
	h.m = m
	execCmd(t, m, m.Init())
	return h
}

func sampleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{
		"a.txt":    "token token",
		"b.txt":    "one",
		"sub/c.go": "package c",
	})
	return dir
}

// execCmd runs cmd and feeds the resulting messages back into the model
// until nothing is left. Frame and spinner ticks are dropped, they would
// reschedule forever.
func execCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			execCmd(t, m, c)
		}
	case messages.FrameMsg, spinner.TickMsg, tea.QuitMsg:
	default:
		_, next := m.Update(msg)
		execCmd(t, m, next)
	}
}

// resolve runs cmd and returns its messages without delivering them.
func resolve(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, resolve(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func press(t *testing.T, m *Model, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(msg)
	execCmd(t, m, cmd)
}

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyF1       = tea.KeyMsg{Type: tea.KeyF1}
	keyF2       = tea.KeyMsg{Type: tea.KeyF2}
	keyF3       = tea.KeyMsg{Type: tea.KeyF3}
	keyF10      = tea.KeyMsg{Type: tea.KeyF10}
)

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialLoad(t *testing.T) {
	dir := sampleTree(t)
	h := newHarness(t, dir, nil)
	m := h.m

	assert.False(t, m.Processing())
	assert.Equal(t, common.SourcePath, m.Focused())
	assert.Equal(t, dir, m.SourceRoot())
	assert.Len(t, m.loaded, 3)
	assert.Equal(t, 3, m.selection.Count(), "first load selects everything")
	assert.Contains(t, m.Status(), "Loaded 3 files")
	assert.Equal(t, tokens.Summary{NotCounted: 3}, m.Summary())
	assert.EqualValues(t, 1, h.opens.Load())
}

func TestUnreachableSource(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "missing"), nil)
	m := h.m

	assert.False(t, m.Processing(), "a failed reload must not leave the gate closed")
	assert.Nil(t, m.src)
	assert.Empty(t, m.loaded)
	assert.Empty(t, m.selection.Paths())
	assert.Empty(t, m.selection.Extensions())
	assert.Contains(t, m.Status(), "Cannot open")

	// Merging without a source reports instead of crashing.
	press(t, m, keyF2)
	assert.Contains(t, m.Status(), "Merge failed")
	assert.False(t, m.Processing())
}

func TestDispatchAndDrain(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	press(t, m, keyTab)
	press(t, m, keyTab)
	require.Equal(t, common.SourceFiles, m.Focused())

	press(t, m, keyEnter)
	assert.Equal(t, common.Output, m.Focused(), "enter on the file list moves on to the output")

	require.Eventually(t, func() bool {
		m.Update(messages.FrameMsg{Time: time.Now()})
		return m.Summary().Pending == 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, tokens.Summary{Total: 5, Counted: 3}, m.Summary())
	assert.Equal(t, tokens.Status{State: tokens.Counted, Count: 2}, m.tracker.Status("a.txt"))

	// Deselecting a file drops it from the sum right away.
	press(t, m, keyShiftTab)
	require.Equal(t, common.SourceFiles, m.Focused())
	press(t, m, keySpace)
	assert.False(t, m.selection.IsSelected("a.txt"))
	assert.Equal(t, 3, m.Summary().Total)
}

func TestFrameWithoutResultsIsNoop(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m
	before := m.Summary()

	_, cmd := m.Update(messages.FrameMsg{Time: time.Now()})
	assert.NotNil(t, cmd, "the frame tick reschedules itself")
	assert.Equal(t, before, m.Summary())
}

func TestEscape(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	press(t, m, keyTab)
	press(t, m, keyEsc)
	assert.Equal(t, common.SourcePath, m.Focused(), "esc moves back outside the source path")
	assert.False(t, m.ExitRequested())

	_, cmd := m.Update(keyEsc)
	assert.True(t, m.ExitRequested())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestF10Exits(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	press(t, h.m, keyTab)
	press(t, h.m, keyTab)
	_, cmd := h.m.Update(keyF10)
	assert.True(t, h.m.ExitRequested())
	require.NotNil(t, cmd)
}

func TestDirtyPathReload(t *testing.T) {
	first := sampleTree(t)
	second := t.TempDir()
	testutils.CreateTestFilesWithContent(t, second, map[string]string{"only.md": "# only"})

	h := newHarness(t, first, nil)
	m := h.m

	// Leaving the path unchanged does not reload.
	press(t, m, keyTab)
	press(t, m, keyShiftTab)
	assert.EqualValues(t, 1, h.opens.Load())

	press(t, m, keyF3)
	assert.Empty(t, m.pathEditor.Value())
	press(t, m, typeText(second))
	assert.EqualValues(t, 1, h.opens.Load(), "typing alone never reloads")

	press(t, m, keyTab)
	assert.EqualValues(t, 2, h.opens.Load())
	assert.Equal(t, second, m.SourceRoot())
	assert.Equal(t, []string{"only.md"}, m.selection.Paths())
	assert.Equal(t, []string{"md"}, m.selection.Extensions())

	// Coming back and leaving again with the same value is clean.
	press(t, m, keyShiftTab)
	press(t, m, keyTab)
	assert.EqualValues(t, 2, h.opens.Load())
}

func TestReloadResetsTokenStatus(t *testing.T) {
	dir := sampleTree(t)
	h := newHarness(t, dir, nil)
	m := h.m

	press(t, m, keyTab)
	press(t, m, keyTab)
	press(t, m, keyEnter)
	require.NoError(t, m.tracker.Await(context.Background()))
	gen := m.tracker.Generation()

	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"d.txt": "new file here"})
	press(t, m, keyF1)

	assert.Greater(t, m.tracker.Generation(), gen)
	assert.Equal(t, tokens.NotCounted, m.tracker.Status("a.txt").State)
	assert.True(t, m.selection.IsSelected("d.txt"), "new files of a fully selected extension are selected")
	assert.Equal(t, tokens.Summary{NotCounted: 4}, m.Summary())
}

func TestProcessingGate(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	_, reload := m.Update(keyF1)
	require.NotNil(t, reload)
	assert.True(t, m.Processing())

	// Requests made while processing are refused, not queued.
	m.Update(keyF2)
	m.Update(keyF2)
	m.Update(keyF1)
	assert.False(t, m.mergeNeeded)
	assert.False(t, m.reloadNeeded)

	for m.Focused() != common.OutputFile {
		m.Update(keyTab)
	}
	_, cmd := m.Update(keyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.mergeNeeded)
	assert.EqualValues(t, 1, h.opens.Load())

	execCmd(t, m, reload)
	assert.False(t, m.Processing())
	assert.EqualValues(t, 2, h.opens.Load(), "initial load and one F1")
	_, err := os.Stat(h.out)
	assert.True(t, os.IsNotExist(err), "no merge ran after the reload")

	// Once idle the same key is accepted.
	press(t, m, keyF2)
	data, err := os.ReadFile(h.out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Merged 3 files")
}

func TestMergeRefusedWhileMerging(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	_, merge := m.Update(keyF2)
	require.NotNil(t, merge)
	assert.True(t, m.Processing())
	m.Update(keyF2)

	assert.False(t, m.mergeNeeded)

	msgs := resolve(merge)
	require.Len(t, msgs, 1)
	require.IsType(t, messages.MergeDoneMsg{}, msgs[0])
	_, followUp := m.Update(msgs[0])
	assert.False(t, m.Processing())
	assert.Nil(t, followUp, "the second F2 did not start another merge")
}

func TestSourceChangeWhileProcessingIsDeferred(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	_, merge := m.Update(keyF2)
	require.NotNil(t, merge)
	m.Update(messages.SourceChangedMsg{})
	assert.True(t, m.reloadNeeded)

	execCmd(t, m, merge)
	assert.False(t, m.Processing())
	assert.False(t, m.reloadNeeded)
	assert.EqualValues(t, 2, h.opens.Load(), "watcher reload ran after the merge")
}

func TestMergeToFile(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	// Enter on the output file triggers the merge.
	for m.Focused() != common.OutputFile {
		press(t, m, keyTab)
	}
	press(t, m, keyEnter)

	data, err := os.ReadFile(h.out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- path: a.txt")
	assert.Contains(t, string(data), "- path: sub/c.go")
	assert.Contains(t, m.Status(), "Merged 3 files")
	assert.Empty(t, h.clip.text)
}

func TestMergeNothingSelected(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	press(t, m, keyTab)
	require.Equal(t, common.Filters, m.Focused())
	press(t, m, keySpace)
	press(t, m, typeText("j"))
	press(t, m, keySpace)
	require.Zero(t, m.selection.Count())

	press(t, m, keyF2)
	assert.Contains(t, m.Status(), errors.ErrNothingSelected.Error())
	_, err := os.Stat(h.out)
	assert.True(t, os.IsNotExist(err))
}

func TestFileAndClipboardSurvivesClipboardFailure(t *testing.T) {
	h := newHarness(t, sampleTree(t), func(c *config.Config) {
		c.Output.Destination = output.FileAndClipboard.String()
	})
	h.clip.err = errors.NewSinkError("clipboard unavailable", "clipboard", errors.ClipboardFailed, nil)

	press(t, h.m, keyF2)

	_, err := os.Stat(h.out)
	require.NoError(t, err, "the file write stands")
	assert.Contains(t, h.m.Status(), "Merged 3 files")
	assert.Contains(t, h.m.Status(), "clipboard copy failed")
	assert.NotContains(t, h.m.Status(), "Merge failed")
}

func TestClipboardDestination(t *testing.T) {
	h := newHarness(t, sampleTree(t), func(c *config.Config) {
		c.Output.Destination = output.Clipboard.String()
	})
	m := h.m

	var seen []common.FocusedPanel
	for i := 0; i < 4; i++ {
		press(t, m, keyTab)
		seen = append(seen, m.Focused())
	}
	assert.Equal(t, []common.FocusedPanel{common.Filters, common.SourceFiles, common.Output, common.SourcePath}, seen)

	press(t, m, keyShiftTab)
	require.Equal(t, common.Output, m.Focused())
	press(t, m, keyEnter)

	assert.Contains(t, h.clip.text, "# Merged 3 files")
	assert.Contains(t, m.Status(), "copied to clipboard")
	_, err := os.Stat(h.out)
	assert.True(t, os.IsNotExist(err), "clipboard merges write no file")
}

func TestOutputPanelChangesDestination(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	m := h.m

	for m.Focused() != common.Output {
		press(t, m, keyTab)
	}
	press(t, m, typeText("l"))
	assert.Equal(t, output.Clipboard, m.Destination())

	// The output file panel leaves the cycle.
	press(t, m, keyTab)
	assert.Equal(t, common.SourcePath, m.Focused())
}

func TestSourceChangedRequestsReload(t *testing.T) {
	dir := sampleTree(t)
	h := newHarness(t, dir, nil)

	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"e.txt": "e"})
	_, cmd := h.m.Update(messages.SourceChangedMsg{Change: watch.Change{Root: dir, Paths: []string{filepath.Join(dir, "e.txt")}}})
	execCmd(t, h.m, cmd)

	assert.EqualValues(t, 2, h.opens.Load())
	assert.Len(t, h.m.loaded, 4)
}

func TestView(t *testing.T) {
	h := newHarness(t, sampleTree(t), nil)
	h.m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	out := testutils.StripANSI(h.m.View())
	assert.Contains(t, out, "Source Path")
	assert.Contains(t, out, "Source Files (3/3)")
	assert.Contains(t, out, "Filters (2/2)")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "Output File")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Output.Destination = "printer"
	_, err := New(Options{Config: cfg, Counter: tokens.Whitespace{}})
	assert.True(t, errors.IsInvalidConfig(err))
}
