// Package watch reports changes under a source root so the controller can
// request a reload.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"srcmerge/internal/log"
	"srcmerge/internal/output"
	"srcmerge/internal/source"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Change is a batch of file events under Root, delivered after the tree has
// been quiet for the debounce period.
type Change struct {
	Root  string
	Paths []string
	At    time.Time
}

// Options configures a Watcher.
type Options struct {
	// Filter decides which directories are watched and which file events
	// count.
	Filter source.FilterConfig
	// Debounce is the quiet period before a Change is emitted.
	Debounce time.Duration
	// Ignore holds absolute paths whose events are dropped, such as the
	// merge output file.
	Ignore []string
}

// Watcher monitors a directory tree for file changes using fsnotify
type Watcher struct {
	opts    Options
	matcher *source.Matcher

	// Root being watched and the directories registered under it
	root        string
	directories []string
	ignore      map[string]struct{}

	// Channel to deliver batched changes
	changes chan Change

	// Channel to signal stop
	stopChan chan struct{}
	done     chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state, root, directories and ignore set
	mutex sync.RWMutex

	// Whether the watcher is running, and whether it was stopped for good
	running bool
	stopped bool
}

// New creates a new tree watcher using fsnotify
func New(opts Options) (*Watcher, error) {
	matcher, err := opts.Filter.Compile()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:      opts,
		matcher:   matcher,
		changes:   make(chan Change, 1),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		fsWatcher: fsWatcher,
	}
	w.SetIgnore(opts.Ignore...)
	return w, nil
}

// SetIgnore replaces the set of paths whose events are dropped.
func (w *Watcher) SetIgnore(paths ...string) {
	ignore := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(source.ExpandHome(p)); err == nil {
			ignore[abs] = struct{}{}
		}
	}
	w.mutex.Lock()
	w.ignore = ignore
	w.mutex.Unlock()
}

// Watch switches the watcher to root, registering every directory the
// filter does not prune. Directories of the previous root are released.
func (w *Watcher) Watch(root string) error {
	abs, err := filepath.Abs(source.ExpandHome(root))
	if err != nil {
		return fmt.Errorf("error resolving directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}

	w.mutex.Lock()
	old := w.directories
	w.directories = nil
	w.root = abs
	w.mutex.Unlock()

	for _, dir := range old {
		// The directory may already be gone
		_ = w.fsWatcher.Remove(dir)
	}

	if err := w.addTree(abs); err != nil {
		return err
	}
	log.LogWithFields(log.F("directory", abs), log.F("directories", len(w.GetDirectories()))).Info("Watching source tree")
	return nil
}

// addTree registers dir and every unpruned directory below it.
func (w *Watcher) addTree(dir string) error {
	root := w.Root()
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(root, p); relErr == nil && w.matcher.SkipDir(filepath.ToSlash(rel)) {
			return fs.SkipDir
		}
		if err := w.fsWatcher.Add(p); err != nil {
			log.LogWithFields(log.F("directory", p), log.F("error", err)).Warn("Failed to watch directory")
			return nil
		}
		w.mutex.Lock()
		w.directories = append(w.directories, p)
		w.mutex.Unlock()
		return nil
	})
}

// Events returns the channel that delivers batched changes
func (w *Watcher) Events() <-chan Change {
	return w.changes
}

// Root returns the watched root.
func (w *Watcher) Root() string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.root
}

// Start begins the event loop
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running || w.stopped {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running or stopped")
	}
	w.running = true
	w.mutex.Unlock()

	go w.loop()
	log.Debug("Watcher started.")
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.handle(event) {
				pending[event.Name] = struct{}{}
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			change := Change{Root: w.Root(), At: time.Now()}
			for p := range pending {
				change.Paths = append(change.Paths, p)
			}
			sort.Strings(change.Paths)
			pending = make(map[string]struct{})

			// A queued change already asks for a reload
			select {
			case w.changes <- change:
			default:
				log.LogWithFields(log.F("files", len(change.Paths))).Debug("Change already queued, merged event")
			}

		case <-w.stopChan:
			timer.Stop()
			return
		}
	}
}

// handle registers new directories and reports whether the event counts as
// a change of the source.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	w.mutex.RLock()
	ignored := w.ignored(event.Name)
	root := w.root
	w.mutex.RUnlock()
	if ignored || root == "" {
		return false
	}

	rel, err := filepath.Rel(root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.matcher.SkipDir(rel) {
				return false
			}
			if err := w.addTree(event.Name); err != nil {
				log.LogWithFields(log.F("directory", event.Name), log.F("error", err)).Warn("Failed to watch new directory")
			}
			return true
		}
	}

	// Removed or renamed directories are not stat-able any more; a path
	// without an allowed extension may still be one of them.
	if w.isDirectory(event.Name) {
		return true
	}
	return w.matcher.Match(rel, 0)
}

// ignored reports events on an ignored path or on its atomic write temp
// file. Callers hold the read lock.
func (w *Watcher) ignored(name string) bool {
	if _, ok := w.ignore[name]; ok {
		return true
	}
	for p := range w.ignore {
		if output.IsTempFile(name, p) {
			return true
		}
	}
	return false
}

func (w *Watcher) isDirectory(p string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	for _, dir := range w.directories {
		if dir == p {
			return true
		}
	}
	return false
}

// Stop halts the watcher, releases fsnotify and closes the Events channel.
// It is safe to call on a watcher that was never started.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.stopped {
		w.mutex.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mutex.Unlock()

	if wasRunning {
		close(w.stopChan)
		<-w.done
	}

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	close(w.changes)
	log.Debug("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
