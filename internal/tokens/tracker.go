package tokens

import (
	"context"
	"fmt"
	"strings"

	"srcmerge/internal/errors"
	"srcmerge/internal/log"
	"srcmerge/internal/source"

	"github.com/dustin/go-humanize"
)

// State is the lifecycle stage of one file's token count.
type State int

const (
	NotCounted State = iota
	Counting
	Counted
	Failed
)

func (s State) String() string {
	switch s {
	case NotCounted:
		return "not counted"
	case Counting:
		return "counting"
	case Counted:
		return "counted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the token state of one loaded file. Count is set when State is
// Counted, Err when State is Failed.
type Status struct {
	State State
	Count int
	Err   string
}

// Result is what a background count reports back.
type Result struct {
	Path       string
	Generation uint64
	Count      int
	Err        error
}

// DefaultBuffer is the result channel capacity used by NewTracker when
// given a non-positive size.
const DefaultBuffer = 256

// Tracker dispatches background token counts and folds their results into
// per-file statuses. All methods except the background tasks themselves
// must be called from a single goroutine.
type Tracker struct {
	counter    Counter
	results    chan Result
	statuses   map[string]Status
	generation uint64
}

// NewTracker creates a Tracker that counts with counter.
func NewTracker(counter Counter, buffer int) *Tracker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Tracker{
		counter:  counter,
		results:  make(chan Result, buffer),
		statuses: make(map[string]Status),
	}
}

// Reset starts a new generation with every file NotCounted. Results from
// tasks of earlier generations are dropped when they arrive.
func (t *Tracker) Reset(files []source.SourceFile) {
	t.generation++
	t.statuses = make(map[string]Status, len(files))
	for _, f := range files {
		t.statuses[f.Path] = Status{State: NotCounted}
	}
}

// Generation returns the current load generation.
func (t *Tracker) Generation() uint64 {
	return t.generation
}

// Status returns the status of path. Unknown paths report NotCounted.
func (t *Tracker) Status(path string) Status {
	return t.statuses[path]
}

// Dispatch starts one background count for every selected file that is
// loaded and NotCounted. The status flips to Counting before the task
// starts, so calling Dispatch again does not spawn a second task. It never
// blocks and returns the number of tasks started.
func (t *Tracker) Dispatch(ctx context.Context, selected []string, loaded map[string]source.SourceFile, src source.TextSource) int {
	if src == nil || t.counter == nil {
		return 0
	}
	started := 0
	for _, p := range selected {
		st, ok := t.statuses[p]
		if !ok || st.State != NotCounted {
			continue
		}
		f, ok := loaded[p]
		if !ok {
			continue
		}
		t.statuses[p] = Status{State: Counting}
		go t.count(ctx, src, f, t.generation)
		started++
	}
	if started > 0 {
		log.LogWithFields(log.F("files", started), log.F("generation", t.generation)).Debug("dispatched token counts")
	}
	return started
}

func (t *Tracker) count(ctx context.Context, src source.TextSource, f source.SourceFile, gen uint64) {
	res := Result{Path: f.Path, Generation: gen}
	defer func() {
		if r := recover(); r != nil {
			res.Count = 0
			res.Err = errors.WrapKind(fmt.Errorf("%v", r), errors.CountFailed, "token count panicked")
		}
		t.results <- res
	}()

	content, err := src.FetchContent(ctx, f)
	if err != nil {
		res.Err = err
		return
	}
	n, err := t.counter.Count(content)
	if err != nil {
		res.Err = errors.WrapKind(err, errors.CountFailed, "token count failed")
		return
	}
	res.Count = n
	log.LogWithFields(log.F("path", f.Path), log.F("tokens", n)).Debug("token count finished")
}

// Drain applies every result currently queued and returns how many changed
// a status. It returns immediately when nothing is pending.
func (t *Tracker) Drain() int {
	applied := 0
	for {
		select {
		case r := <-t.results:
			if t.apply(r) {
				applied++
			}
		default:
			return applied
		}
	}
}

// Await blocks until no file is Counting or ctx is done.
func (t *Tracker) Await(ctx context.Context) error {
	for t.pending() > 0 {
		select {
		case r := <-t.results:
			t.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (t *Tracker) apply(r Result) bool {
	if r.Generation != t.generation {
		return false
	}
	st, ok := t.statuses[r.Path]
	if !ok || st.State != Counting {
		return false
	}
	if r.Err != nil {
		t.statuses[r.Path] = Status{State: Failed, Err: r.Err.Error()}
	} else {
		t.statuses[r.Path] = Status{State: Counted, Count: r.Count}
	}
	return true
}

func (t *Tracker) pending() int {
	n := 0
	for _, st := range t.statuses {
		if st.State == Counting {
			n++
		}
	}
	return n
}

// Summary aggregates the statuses of a set of selected files.
type Summary struct {
	Total      int
	Counted    int
	Pending    int
	Failed     int
	NotCounted int
}

// Summary sums Counted values over the selected files that are loaded.
// Other states contribute zero.
func (t *Tracker) Summary(selected []string) Summary {
	var s Summary
	for _, p := range selected {
		st, ok := t.statuses[p]
		if !ok {
			continue
		}
		switch st.State {
		case Counted:
			s.Total += st.Count
			s.Counted++
		case Counting:
			s.Pending++
		case Failed:
			s.Failed++
		default:
			s.NotCounted++
		}
	}
	return s
}

func (s Summary) String() string {
	var parts []string
	if s.Pending > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", s.Pending))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	if s.NotCounted > 0 {
		parts = append(parts, fmt.Sprintf("%d not counted", s.NotCounted))
	}
	out := "Tokens: " + humanize.Comma(int64(s.Total))
	if len(parts) > 0 {
		out += " (" + strings.Join(parts, ", ") + ")"
	}
	return out
}
