package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent writes files under dir. Names may contain
// slash separated subdirectories, which are created as needed.
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

// CreateTestFilesWithDefault creates a small mixed source tree
func CreateTestFilesWithDefault(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"main.go":          "package main\n\nfunc main() {}\n",
		"README.md":        "# demo\n",
		"internal/util.go": "package internal\n",
		"docs/notes.txt":   "token token token\n",
	}
	CreateTestFilesWithContent(t, dir, files)
}

// StripANSI drops terminal styling so rendered views can be compared as text.
func StripANSI(str string) string {
	return ansi.Strip(str)
}
