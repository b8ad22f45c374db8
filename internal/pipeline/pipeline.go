// Package pipeline runs the reload and merge steps the controller triggers.
// Both are plain blocking functions; callers decide where they run.
package pipeline

import (
	"context"
	"sort"
	"time"

	"srcmerge/internal/errors"
	"srcmerge/internal/log"
	"srcmerge/internal/output"
	"srcmerge/internal/source"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FetchConcurrency bounds parallel content reads during a merge.
const FetchConcurrency = 8

func newOpID() string {
	return uuid.NewString()[:8]
}

// ReloadResult is the outcome of Reload. Source is nil when the location
// could not be opened. Files is empty whenever Err is set.
type ReloadResult struct {
	Source source.TextSource
	Files  []source.SourceFile
	Err    error
}

// Reload opens location and lists it with filter. Failures never panic or
// abort: an unopenable location yields no source, a failed listing keeps
// the source with no files.
func Reload(ctx context.Context, open source.Opener, location string, filter source.FilterConfig) ReloadResult {
	if open == nil {
		open = source.DefaultOpener
	}
	start := time.Now()
	logger := log.LogWithFields(log.F("op", newOpID()), log.F("source", location))

	src, err := open(ctx, location)
	if err != nil {
		logger.WithError(err).Warn("source unavailable")
		return ReloadResult{Err: err}
	}
	files, err := src.List(ctx, filter)
	if err != nil {
		logger.WithError(err).Warn("failed to index source")
		return ReloadResult{Source: src, Err: err}
	}
	logger.With(log.F("files", len(files)), log.F("elapsed", time.Since(start).String())).Info("reloaded source")
	return ReloadResult{Source: src, Files: files}
}

// MergeRequest describes what to merge and where.
type MergeRequest struct {
	Selected    []string
	Loaded      map[string]source.SourceFile
	Destination output.Destination
	OutputPath  string
	// Tokens holds known counts by path; missing paths are written without
	// a token line.
	Tokens map[string]int
}

// MergeResult describes a successful merge. ClipboardErr is set when the
// extra clipboard copy of a FileAndClipboard merge failed; the file write
// still stands.
type MergeResult struct {
	Path         string
	Files        int
	Bytes        int
	Text         string
	Copied       bool
	ClipboardErr error
}

// Merge fetches every selected, loaded file and hands them to w. Any fetch
// failure fails the whole merge. For FileAndClipboard the clipboard copy
// happens after the write succeeded.
func Merge(ctx context.Context, src source.TextSource, w output.Writer, clip output.ClipboardSink, req MergeRequest) (MergeResult, error) {
	opID := newOpID()
	logger := log.LogWithFields(log.F("op", opID), log.F("destination", req.Destination.String()))

	if src == nil {
		return MergeResult{}, errors.ErrNoSource
	}

	subset := make(map[string]source.SourceFile, len(req.Selected))
	for _, p := range req.Selected {
		if f, ok := req.Loaded[p]; ok {
			subset[p] = f
		}
	}
	if len(subset) == 0 {
		return MergeResult{}, errors.ErrNothingSelected
	}

	files := make([]source.SourceFile, 0, len(subset))
	for _, f := range subset {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	entries := make([]output.Entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(FetchConcurrency)
	for i, f := range files {
		g.Go(func() error {
			content, err := src.FetchContent(gctx, f)
			if err != nil {
				return err
			}
			n, counted := req.Tokens[f.Path]
			entries[i] = output.Entry{Path: f.Path, Content: content, Tokens: n, Counted: counted}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("merge aborted")
		return MergeResult{}, err
	}

	text, err := w.Write(ctx, output.Request{
		Entries:     entries,
		Destination: req.Destination,
		Path:        req.OutputPath,
	})
	if err != nil {
		logger.WithError(err).Error("merge failed")
		return MergeResult{}, err
	}

	res := MergeResult{
		Files:  len(entries),
		Bytes:  len(text),
		Text:   text,
		Copied: req.Destination == output.Clipboard,
	}
	if req.Destination.WritesFile() {
		res.Path = req.OutputPath
	}

	if req.Destination == output.FileAndClipboard {
		var copyErr error
		if clip == nil {
			copyErr = errors.NewSinkError("no clipboard available", "clipboard", errors.ClipboardFailed, nil)
		} else {
			copyErr = clip.Copy(text)
		}
		if copyErr != nil {
			res.ClipboardErr = copyErr
			logger.WithError(copyErr).Warn("output written but clipboard copy failed")
		} else {
			res.Copied = true
		}
	}

	logger.With(log.F("files", res.Files), log.F("size", humanize.Bytes(uint64(res.Bytes)))).Info("merge complete")
	return res, nil
}
