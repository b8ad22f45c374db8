// Package selection holds the selected files and extensions of the current
// load.
package selection

import (
	"sort"
	"strings"

	"srcmerge/internal/source"
)

// Selection tracks which loaded files are selected. Selected extensions are
// derived: an extension is selected when every loaded file with it is.
type Selection struct {
	files    []source.SourceFile
	byExt    map[string][]string
	exts     []string
	selected map[string]struct{}
}

// New returns an empty Selection.
func New() *Selection {
	return &Selection{
		byExt:    make(map[string][]string),
		selected: make(map[string]struct{}),
	}
}

// Rebuild replaces the loaded files. The first non-empty load selects
// everything. Later loads keep selected paths that still exist and select
// new paths whose extension was fully selected or is new.
func (s *Selection) Rebuild(files []source.SourceFile) {
	first := len(s.files) == 0
	oldPaths := make(map[string]struct{}, len(s.files))
	for _, f := range s.files {
		oldPaths[f.Path] = struct{}{}
	}
	oldExt := make(map[string]bool, len(s.exts))
	for _, e := range s.exts {
		oldExt[e] = s.ExtensionSelected(e)
	}

	selected := make(map[string]struct{}, len(files))
	for _, f := range files {
		if first {
			selected[f.Path] = struct{}{}
			continue
		}
		if _, existed := oldPaths[f.Path]; existed {
			if _, ok := s.selected[f.Path]; ok {
				selected[f.Path] = struct{}{}
			}
			continue
		}
		if full, known := oldExt[f.Ext()]; full || !known {
			selected[f.Path] = struct{}{}
		}
	}

	s.files = append([]source.SourceFile(nil), files...)
	s.selected = selected
	s.byExt = make(map[string][]string)
	for _, f := range s.files {
		s.byExt[f.Ext()] = append(s.byExt[f.Ext()], f.Path)
	}
	s.exts = make([]string, 0, len(s.byExt))
	for e := range s.byExt {
		s.exts = append(s.exts, e)
	}
	sort.Strings(s.exts)
}

// Files returns the loaded files in load order.
func (s *Selection) Files() []source.SourceFile {
	return s.files
}

// Extensions returns the distinct extensions of the loaded files, sorted.
// Files without an extension are grouped under "".
func (s *Selection) Extensions() []string {
	return s.exts
}

// ExtensionCount returns how many loaded files have ext.
func (s *Selection) ExtensionCount(ext string) int {
	return len(s.byExt[ext])
}

// IsSelected reports whether path is selected.
func (s *Selection) IsSelected(path string) bool {
	_, ok := s.selected[path]
	return ok
}

// ExtensionSelected reports whether every loaded file with ext is selected.
func (s *Selection) ExtensionSelected(ext string) bool {
	paths := s.byExt[ext]
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if !s.IsSelected(p) {
			return false
		}
	}
	return true
}

// SelectedExtensions returns the fully selected extensions.
func (s *Selection) SelectedExtensions() []string {
	var out []string
	for _, e := range s.exts {
		if s.ExtensionSelected(e) {
			out = append(out, e)
		}
	}
	return out
}

// ToggleFile flips path. Paths that are not loaded are ignored.
func (s *Selection) ToggleFile(path string) {
	if _, ok := s.selected[path]; ok {
		delete(s.selected, path)
		return
	}
	for _, f := range s.files {
		if f.Path == path {
			s.selected[path] = struct{}{}
			return
		}
	}
}

// ToggleExtension deselects every file with ext when the extension is
// selected, otherwise selects them all.
func (s *Selection) ToggleExtension(ext string) {
	on := !s.ExtensionSelected(ext)
	for _, p := range s.byExt[ext] {
		if on {
			s.selected[p] = struct{}{}
		} else {
			delete(s.selected, p)
		}
	}
}

// SelectOnly selects exactly the files whose extension is in exts. An empty
// list selects everything.
func (s *Selection) SelectOnly(exts []string) {
	s.selected = make(map[string]struct{}, len(s.files))
	allow := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allow[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	for _, f := range s.files {
		if _, ok := allow[f.Ext()]; ok || len(exts) == 0 {
			s.selected[f.Path] = struct{}{}
		}
	}
}

// Paths returns the selected paths in load order.
func (s *Selection) Paths() []string {
	out := make([]string, 0, len(s.selected))
	for _, f := range s.files {
		if _, ok := s.selected[f.Path]; ok {
			out = append(out, f.Path)
		}
	}
	return out
}

// Count returns the number of selected files.
func (s *Selection) Count() int {
	return len(s.selected)
}
