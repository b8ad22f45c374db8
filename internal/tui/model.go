package tui

import (
	"context"
	"fmt"
	"time"

	"srcmerge/internal/config"
	"srcmerge/internal/log"
	"srcmerge/internal/output"
	"srcmerge/internal/pipeline"
	"srcmerge/internal/selection"
	"srcmerge/internal/source"
	"srcmerge/internal/tokens"
	"srcmerge/internal/tui/common"
	"srcmerge/internal/tui/components"
	"srcmerge/internal/tui/messages"
	"srcmerge/internal/tui/views"
	"srcmerge/internal/watch"
	"srcmerge/pkg/types"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// FrameInterval is how often token count results are drained.
const FrameInterval = 100 * time.Millisecond

// Options wires the controller to its collaborators. Nil fields get the
// production implementation.
type Options struct {
	Context   context.Context
	Config    *config.Config
	Opener    source.Opener
	Counter   tokens.Counter
	Writer    output.Writer
	Clipboard output.ClipboardSink
	Watcher   *watch.Watcher
	Keys      *types.KeyMap
}

// Model is the merge controller. It owns the loaded files, the selection
// and the token statuses; panels only keep their own cursor or text.
type Model struct {
	ctx     context.Context
	cfg     *config.Config
	keys    *types.KeyMap
	open    source.Opener
	writer  output.Writer
	clip    output.ClipboardSink
	watcher *watch.Watcher

	// Panels
	focus        common.FocusedPanel
	dest         output.Destination
	pathEditor   *components.Editor
	filters      *components.Filters
	files        *components.Files
	outputPanel  *components.Output
	outputEditor *components.Editor
	status       *components.StatusBar

	// Loaded state, replaced wholesale on reload
	src            source.TextSource
	loaded         map[string]source.SourceFile
	selection      *selection.Selection
	tracker        *tokens.Tracker
	summary        tokens.Summary
	lastReloadPath string

	// One-shot requests, honoured by startPending while not processing
	processing    bool
	reloadNeeded  bool
	mergeNeeded   bool
	exitRequested bool

	width  int
	height int
}

var _ common.ModelReader = (*Model)(nil)

// New builds the controller. The first reload of the configured source
// path is requested immediately.
func New(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	counter := opts.Counter
	if counter == nil {
		counter = tokens.NewCounter(cfg.Tokens.Encoding)
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = output.SystemClipboard{}
	}
	writer := opts.Writer
	if writer == nil {
		writer = output.NewWriter(clip)
	}
	keys := opts.Keys
	if keys == nil {
		k := types.DefaultKeyMap()
		keys = &k
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	open := opts.Opener
	if open == nil {
		open = source.DefaultOpener
	}

	m := &Model{
		ctx:     ctx,
		cfg:     cfg,
		keys:    keys,
		open:    open,
		writer:  writer,
		clip:    clip,
		watcher: opts.Watcher,

		focus:        common.SourcePath,
		dest:         cfg.Destination(),
		pathEditor:   components.NewEditor("Source Path", "directory to merge", cfg.Source.Path),
		filters:      components.NewFilters(),
		files:        components.NewFiles(),
		outputPanel:  components.NewOutput(),
		outputEditor: components.NewEditor("Output File", "merged.md", cfg.Output.Path),
		status:       components.NewStatusBar(),

		loaded:         map[string]source.SourceFile{},
		selection:      selection.New(),
		tracker:        tokens.NewTracker(counter, tokens.DefaultBuffer),
		lastReloadPath: cfg.Source.Path,
		reloadNeeded:   true,
	}
	return m, nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		frameTick(),
		m.status.Init(),
		m.pathEditor.Focus(),
		m.startPending(),
		m.listen(),
	)
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKeyMsg(msg)
		if m.exitRequested {
			return m, tea.Quit
		}
		m.refreshSummary()
		return m, tea.Batch(cmd, m.startPending())

	case messages.FrameMsg:
		m.tracker.Drain()
		m.refreshSummary()
		return m, frameTick()

	case messages.ReloadDoneMsg:
		m.applyReload(msg)
		return m, m.startPending()

	case messages.MergeDoneMsg:
		m.applyMerge(msg)
		return m, m.startPending()

	case messages.SourceChangedMsg:
		log.LogWithFields(log.F("root", msg.Change.Root), log.F("files", len(msg.Change.Paths))).Debug("source changed")
		m.reloadNeeded = true
		return m, tea.Batch(m.startPending(), m.listen())

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}
	return m, nil
}

func frameTick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return messages.FrameMsg{Time: t}
	})
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Exit):
		m.exitRequested = true
		return nil
	case key.Matches(msg, k.Back):
		if m.focus == common.SourcePath {
			m.exitRequested = true
			return nil
		}
		return m.moveFocus(common.Prev(m.focus, m.dest))
	case key.Matches(msg, k.Reload):
		m.request(&m.reloadNeeded, "reload")
		return nil
	case key.Matches(msg, k.Merge):
		m.request(&m.mergeNeeded, "merge")
		return nil
	case key.Matches(msg, k.ClearInput):
		if e := m.editor(m.focus); e != nil {
			e.Clear()
		}
		return nil
	case key.Matches(msg, k.NextPanel):
		return m.moveFocus(common.Next(m.focus, m.dest))
	case key.Matches(msg, k.PrevPanel):
		return m.moveFocus(common.Prev(m.focus, m.dest))
	case key.Matches(msg, k.Confirm):
		return m.confirm()
	}

	ctx := m.context(m.focus, 0, 0)
	cmd := m.panel(m.focus).HandleKey(msg, ctx)
	m.dest = ctx.Destination
	return cmd
}

func (m *Model) confirm() tea.Cmd {
	switch m.focus {
	case common.SourceFiles:
		m.dispatch()
	case common.Output:
		if m.dest == output.Clipboard {
			m.request(&m.mergeNeeded, "merge")
			return nil
		}
	case common.OutputFile:
		m.request(&m.mergeNeeded, "merge")
		return nil
	}
	return m.moveFocus(common.Next(m.focus, m.dest))
}

// request raises a user triggered one-shot flag. Requests made while a
// reload or merge is running are dropped, not queued.
func (m *Model) request(flag *bool, what string) {
	if m.processing {
		log.LogWithFields(log.F("request", what)).Debug("busy, request ignored")
		return
	}
	*flag = true
}

// moveFocus changes the focused panel. Leaving the source path with a value
// different from the last reload requests a reload unless one is running;
// the edit then stays dirty until the path is left again.
func (m *Model) moveFocus(to common.FocusedPanel) tea.Cmd {
	if to == m.focus {
		return nil
	}
	if m.focus == common.SourcePath {
		if p := m.pathEditor.Value(); p != m.lastReloadPath && !m.processing {
			m.lastReloadPath = p
			m.reloadNeeded = true
		}
	}
	if e := m.editor(m.focus); e != nil {
		e.Blur()
	}
	m.focus = to
	if e := m.editor(to); e != nil {
		return e.Focus()
	}
	return nil
}

func (m *Model) dispatch() {
	n := m.tracker.Dispatch(m.ctx, m.selection.Paths(), m.loaded, m.src)
	if n > 0 {
		m.status.SetText(fmt.Sprintf("Counting tokens for %d files", n))
	}
}

func (m *Model) refreshSummary() {
	m.summary = m.tracker.Summary(m.selection.Paths())
}

// startPending starts the requested reload or merge unless one is running.
// A reload wins over a merge; the merge stays requested until it finishes.
// Only watcher changes can still be pending when a step completes.
func (m *Model) startPending() tea.Cmd {
	if m.processing {
		return nil
	}
	switch {
	case m.reloadNeeded:
		m.reloadNeeded = false
		path := m.pathEditor.Value()
		m.lastReloadPath = path
		m.setProcessing(true)
		m.status.SetText("Loading " + path)
		return m.reloadCmd(path)

	case m.mergeNeeded:
		m.mergeNeeded = false
		m.setProcessing(true)
		m.status.SetText("Merging")
		return m.mergeCmd(m.mergeRequest())
	}
	return nil
}

func (m *Model) setProcessing(on bool) {
	m.processing = on
	m.status.SetLoading(on)
}

func (m *Model) reloadCmd(path string) tea.Cmd {
	ctx, open, filter, w := m.ctx, m.open, m.cfg.Filter(), m.watcher
	return func() tea.Msg {
		res := pipeline.Reload(ctx, open, path, filter)
		if w != nil && res.Source != nil {
			if err := w.Watch(res.Source.Root()); err != nil {
				log.LogWithFields(log.F("root", res.Source.Root())).WithError(err).Warn("cannot watch source")
			}
		}
		return messages.ReloadDoneMsg{Path: path, Result: res}
	}
}

// mergeRequest snapshots the selection on the controller goroutine.
func (m *Model) mergeRequest() pipeline.MergeRequest {
	selected := m.selection.Paths()
	counts := make(map[string]int, len(selected))
	for _, p := range selected {
		if st := m.tracker.Status(p); st.State == tokens.Counted {
			counts[p] = st.Count
		}
	}
	return pipeline.MergeRequest{
		Selected:    selected,
		Loaded:      m.loaded,
		Destination: m.dest,
		OutputPath:  m.outputEditor.Value(),
		Tokens:      counts,
	}
}

func (m *Model) mergeCmd(req pipeline.MergeRequest) tea.Cmd {
	ctx, src, w, clip, watcher := m.ctx, m.src, m.writer, m.clip, m.watcher
	return func() tea.Msg {
		if watcher != nil && req.Destination.WritesFile() {
			watcher.SetIgnore(req.OutputPath)
		}
		res, err := pipeline.Merge(ctx, src, w, clip, req)
		return messages.MergeDoneMsg{Result: res, Err: err}
	}
}

// listen waits for the next watcher change.
func (m *Model) listen() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		c, ok := <-events
		if !ok {
			return nil
		}
		return messages.SourceChangedMsg{Change: c}
	}
}

func (m *Model) applyReload(msg messages.ReloadDoneMsg) {
	m.setProcessing(false)
	res := msg.Result

	m.src = res.Source
	m.loaded = source.Index(res.Files)
	m.selection.Rebuild(res.Files)
	m.tracker.Reset(res.Files)
	m.refreshSummary()

	switch {
	case res.Source == nil:
		m.status.SetMessage(components.LevelError, fmt.Sprintf("Cannot open %s: %v", msg.Path, res.Err))
	case res.Err != nil:
		m.status.SetMessage(components.LevelWarning, fmt.Sprintf("Failed to index %s: %v", res.Source.Root(), res.Err))
	default:
		m.status.SetMessage(components.LevelSuccess, fmt.Sprintf("Loaded %d files from %s", len(res.Files), res.Source.Root()))
	}
}

func (m *Model) applyMerge(msg messages.MergeDoneMsg) {
	m.setProcessing(false)
	if msg.Err != nil {
		m.status.SetMessage(components.LevelError, "Merge failed: "+msg.Err.Error())
		return
	}

	r := msg.Result
	text := fmt.Sprintf("Merged %d files (%s)", r.Files, humanize.Bytes(uint64(r.Bytes)))
	if r.Path != "" {
		text += " to " + r.Path
	}
	if r.Copied {
		text += ", copied to clipboard"
	}
	if r.ClipboardErr != nil {
		m.status.SetMessage(components.LevelWarning, text+"; clipboard copy failed: "+r.ClipboardErr.Error())
		return
	}
	m.status.SetMessage(components.LevelSuccess, text)
}

func (m *Model) panel(p common.FocusedPanel) components.Panel {
	switch p {
	case common.SourcePath:
		return m.pathEditor
	case common.Filters:
		return m.filters
	case common.SourceFiles:
		return m.files
	case common.Output:
		return m.outputPanel
	default:
		return m.outputEditor
	}
}

func (m *Model) editor(p common.FocusedPanel) *components.Editor {
	switch p {
	case common.SourcePath:
		return m.pathEditor
	case common.OutputFile:
		return m.outputEditor
	}
	return nil
}

func (m *Model) context(p common.FocusedPanel, width, height int) *components.Context {
	return &components.Context{
		Keys:        m.keys,
		Selection:   m.selection,
		Tracker:     m.tracker,
		Summary:     m.summary,
		Destination: m.dest,
		Focused:     p == m.focus,
		Width:       width,
		Height:      height,
	}
}

// ModelReader implementation

func (m *Model) Focused() common.FocusedPanel    { return m.focus }
func (m *Model) Destination() output.Destination { return m.dest }
func (m *Model) Processing() bool                { return m.processing }
func (m *Model) Keys() *types.KeyMap             { return m.keys }
func (m *Model) Width() int                      { return m.width }
func (m *Model) Height() int                     { return m.height }
func (m *Model) StatusView() string              { return m.status.View() }
func (m *Model) SpinnerView() string             { return m.status.Spinner() }

func (m *Model) SourceRoot() string {
	if m.src == nil {
		return ""
	}
	return m.src.Root()
}

func (m *Model) PanelView(p common.FocusedPanel, width, height int) string {
	return m.panel(p).View(m.context(p, width, height))
}

// ExitRequested reports whether the user asked to leave.
func (m *Model) ExitRequested() bool {
	return m.exitRequested
}

// Summary returns the token summary of the current selection.
func (m *Model) Summary() tokens.Summary {
	return m.summary
}

// Status returns the status line text.
func (m *Model) Status() string {
	return m.status.Text()
}
