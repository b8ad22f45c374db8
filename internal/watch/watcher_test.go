package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"srcmerge/internal/output"
	"srcmerge/internal/source"
	"srcmerge/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = 50 * time.Millisecond
	}
	w, err := New(opts)
	require.NoError(t, err, "New watcher creation failed")
	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(50 * time.Millisecond)
	return w
}

func waitChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c, ok := <-w.Events():
		require.True(t, ok, "Event channel closed unexpectedly")
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for change")
	}
	return Change{}
}

func assertQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case c := <-w.Events():
		t.Fatalf("unexpected change: %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"sub/keep.txt": "x"})
	w := startWatcher(t, dir, Options{})

	abs, _ := filepath.Abs(dir)
	assert.Equal(t, abs, w.Root())
	assert.Len(t, w.GetDirectories(), 2)

	target := filepath.Join(dir, "sub", "new.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("hello again"), 0644))

	c := waitChange(t, w)
	assert.Equal(t, abs, c.Root)
	assert.Contains(t, c.Paths, filepath.Join(abs, "sub", "new.txt"))
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.Mkdir(filepath.Join(dir, "pkg"), 0755))
	waitChange(t, w)
	require.Eventually(t, func() bool { return len(w.GetDirectories()) == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("package pkg"), 0644))
	c := waitChange(t, w)
	assert.Contains(t, c.Paths, filepath.Join(w.Root(), "pkg", "a.go"))
}

func TestWatcherIgnoresFilteredEvents(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"node_modules/x/i.js": "1"})
	out := filepath.Join(dir, "merged.md")
	w := startWatcher(t, dir, Options{
		Filter: source.FilterConfig{Exclude: source.DefaultExcludes},
		Ignore: []string{out},
	})
	assert.Len(t, w.GetDirectories(), 1, "excluded directories are not watched")

	require.NoError(t, os.WriteFile(out, []byte("merged"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte("x"), 0644))
	assertQuiet(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0644))
	c := waitChange(t, w)
	assert.Equal(t, []string{filepath.Join(w.Root(), "main.go")}, c.Paths)
}

func TestWatcherIgnoresAtomicWritesOfOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "merged.md")
	w := startWatcher(t, dir, Options{
		Filter: source.FilterConfig{IncludeHidden: true},
		Ignore: []string{out},
	})

	require.NoError(t, output.WriteFileAtomic(out, []byte("first")))
	require.NoError(t, output.WriteFileAtomic(out, []byte("second")))
	assertQuiet(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("x"), 0644))
	c := waitChange(t, w)
	assert.Equal(t, []string{filepath.Join(w.Root(), ".env")}, c.Paths)
}

func TestWatcherRetarget(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	w := startWatcher(t, first, Options{})

	require.NoError(t, w.Watch(second))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(first, "old.txt"), []byte("x"), 0644))
	assertQuiet(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(second, "new.txt"), []byte("x"), 0644))
	c := waitChange(t, w)
	assert.Equal(t, w.Root(), c.Root)
}

func TestWatcherErrors(t *testing.T) {
	_, err := New(Options{Filter: source.FilterConfig{Exclude: []string{"[bad"}}})
	assert.Error(t, err)

	w, err := New(Options{})
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcherStop(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, w.Watch(t.TempDir()))
	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	w.Stop()
	assert.False(t, w.IsRunning())
	_, ok := <-w.Events()
	assert.False(t, ok, "Event channel should be closed after stop")

	// Stopping twice is harmless and a stopped watcher cannot restart
	w.Stop()
	assert.Error(t, w.Start())
}
