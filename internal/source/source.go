// Package source defines the text source capability consumed by the merge
// controller and ships the local directory backend.
package source

import (
	"context"
	"path"
	"strings"
	"time"
)

// SourceFile is one file produced by a single load of a TextSource. Path is
// slash separated, relative to the source root, and unique within a load.
type SourceFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Ext returns the lower-cased extension without the dot, or "" if none.
func (f SourceFile) Ext() string {
	return Ext(f.Path)
}

// Ext returns the lower-cased extension of p without the dot.
func Ext(p string) string {
	base := path.Base(p)
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// TextSource enumerates and fetches text files. Implementations must be safe
// for concurrent FetchContent calls.
type TextSource interface {
	// List returns the files matching filter, sorted by path.
	List(ctx context.Context, filter FilterConfig) ([]SourceFile, error)

	// FetchContent returns the full text of f.
	FetchContent(ctx context.Context, f SourceFile) (string, error)

	// Root describes where the files come from.
	Root() string
}

// Opener creates a TextSource for a user supplied location.
// This allows for dependency injection in tests.
type Opener func(ctx context.Context, location string) (TextSource, error)

// DefaultOpener opens local directories.
var DefaultOpener Opener = func(ctx context.Context, location string) (TextSource, error) {
	return OpenLocal(location)
}

// Open creates a TextSource with DefaultOpener.
func Open(ctx context.Context, location string) (TextSource, error) {
	return DefaultOpener(ctx, location)
}

// Index maps the files of one load by path.
func Index(files []SourceFile) map[string]SourceFile {
	idx := make(map[string]SourceFile, len(files))
	for _, f := range files {
		idx[f.Path] = f
	}
	return idx
}
