package messages

import (
	"time"

	"srcmerge/internal/pipeline"
	"srcmerge/internal/watch"
)

// FrameMsg drives the per-frame drain of token count results.
type FrameMsg struct {
	Time time.Time
}

// ReloadDoneMsg carries the result of a reload started for Path.
type ReloadDoneMsg struct {
	Path   string
	Result pipeline.ReloadResult
}

// MergeDoneMsg carries the result of a merge. Err is set when the merge
// failed as a whole.
type MergeDoneMsg struct {
	Result pipeline.MergeResult
	Err    error
}

// SourceChangedMsg reports that files under the watched root changed.
type SourceChangedMsg struct {
	Change watch.Change
}
