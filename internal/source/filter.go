package source

import (
	"strings"

	"srcmerge/internal/errors"

	"github.com/gobwas/glob"
)

// DefaultExcludes are skipped unless the user overrides the exclude list.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/target/**",
	"**/*.lock",
	"**/package-lock.json",
}

// FilterConfig describes which files a TextSource returns.
type FilterConfig struct {
	// Extensions is an allow-list without dots. Empty allows every extension.
	Extensions []string `yaml:"extensions"`
	// Exclude holds glob patterns matched against the slash separated
	// relative path. "**" crosses directories, "*" does not.
	Exclude []string `yaml:"exclude"`
	// IncludeHidden keeps dot files and dot directories.
	IncludeHidden bool `yaml:"include_hidden"`
	// IncludeBinary keeps files whose content is not text.
	IncludeBinary bool `yaml:"include_binary"`
	// MaxFileSize drops larger files. Zero disables the limit.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// Matcher is a compiled FilterConfig.
type Matcher struct {
	cfg     FilterConfig
	exts    map[string]struct{}
	exclude []glob.Glob
}

// Compile validates the globs and builds a Matcher.
func (c FilterConfig) Compile() (*Matcher, error) {
	m := &Matcher{cfg: c}
	if len(c.Extensions) > 0 {
		m.exts = make(map[string]struct{}, len(c.Extensions))
		for _, e := range c.Extensions {
			e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
			if e != "" {
				m.exts[e] = struct{}{}
			}
		}
	}
	for _, pattern := range c.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.NewConfigError("invalid exclude pattern", pattern, errors.InvalidPattern, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

// Validate reports the first invalid exclude pattern.
func (c FilterConfig) Validate() error {
	_, err := c.Compile()
	return err
}

// SkipDir reports whether a directory (relative slash path) is pruned.
func (m *Matcher) SkipDir(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	if !m.cfg.IncludeHidden && isHidden(rel) {
		return true
	}
	// A trailing slash lets "**/.git/**" prune the directory itself.
	return m.excluded(rel + "/")
}

// Match reports whether a file passes the name, extension, and size rules.
// Content based rules are applied by the backend.
func (m *Matcher) Match(rel string, size int64) bool {
	if !m.cfg.IncludeHidden && isHidden(rel) {
		return false
	}
	if m.cfg.MaxFileSize > 0 && size > m.cfg.MaxFileSize {
		return false
	}
	if m.exts != nil {
		if _, ok := m.exts[Ext(rel)]; !ok {
			return false
		}
	}
	return !m.excluded(rel)
}

// IncludeBinary reports whether binary files are kept.
func (m *Matcher) IncludeBinary() bool {
	return m.cfg.IncludeBinary
}

func (m *Matcher) excluded(rel string) bool {
	for _, g := range m.exclude {
		if g.Match(rel) {
			return true
		}
		// Let "**/x/**" style patterns also match at the root.
		if g.Match("/" + rel) {
			return true
		}
	}
	return false
}

func isHidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
