package source

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"srcmerge/internal/errors"
	"srcmerge/internal/log"

	"github.com/gabriel-vasile/mimetype"
)

// Local is a TextSource backed by a directory tree.
type Local struct {
	root string
}

var _ TextSource = (*Local)(nil)

// OpenLocal opens the directory at location. A leading "~/" expands to the
// user's home directory.
func OpenLocal(location string) (*Local, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.NewSourceError("empty source path", "", errors.SourceUnavailable, nil)
	}
	expanded := ExpandHome(location)
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, errors.NewSourceError("cannot resolve source path", location, errors.SourceUnavailable, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.NewSourceError("cannot open source", location, errors.SourceUnavailable, err)
	}
	if !info.IsDir() {
		return nil, errors.NewSourceError("source is not a directory", location, errors.SourceUnavailable, nil)
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute directory path.
func (l *Local) Root() string {
	return l.root
}

// List walks the tree and returns the matching regular files.
func (l *Local) List(ctx context.Context, filter FilterConfig) ([]SourceFile, error) {
	matcher, err := filter.Compile()
	if err != nil {
		return nil, err
	}

	var files []SourceFile
	walkErr := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == l.root {
				return err
			}
			log.LogWithFields(log.F("path", p), log.F("error", err)).Warn("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(l.root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if matcher.SkipDir(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if !matcher.Match(rel, info.Size()) {
			return nil
		}
		if !matcher.IncludeBinary() && !isText(p) {
			log.LogWithFields(log.F("path", rel)).Debug("skipping binary file")
			return nil
		}
		files = append(files, SourceFile{Path: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if walkErr != nil {
		return nil, errors.NewSourceError("failed to index source", l.root, errors.IndexFailed, walkErr)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// FetchContent reads one file of the tree.
func (l *Local) FetchContent(ctx context.Context, f SourceFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewSourceError("read cancelled", f.Path, errors.ContentFetchFailed, err)
	}
	clean := path.Clean("/" + f.Path)
	if clean == "/" {
		return "", errors.NewSourceError("invalid file path", f.Path, errors.ContentFetchFailed, nil)
	}
	full := filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	data, err := os.ReadFile(full)
	if err != nil {
		return "", errors.NewSourceError("failed to read file", f.Path, errors.ContentFetchFailed, err)
	}
	return string(data), nil
}

// isText sniffs the file header. Unreadable files are treated as binary.
func isText(p string) bool {
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return false
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// ExpandHome expands a leading "~/" to the user's home directory.
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
