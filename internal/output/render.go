package output

import (
	"fmt"
	"strings"
)

// Entry is one file of a merge.
type Entry struct {
	Path    string
	Content string
	// Tokens is written only when Counted is set.
	Tokens  int
	Counted bool
}

// delimiters are tried in order; the first one absent from every file
// fences the contents. When all appear, a backtick run longer than any in
// the contents is used.
var delimiters = []string{"```", "~~~", "`````", "~~~~~", "```````"}

func detectDelimiter(entries []Entry) string {
	used := make(map[string]bool, len(delimiters))
	for _, e := range entries {
		for _, d := range delimiters {
			if !used[d] && strings.Contains(e.Content, d) {
				used[d] = true
			}
		}
	}
	for _, d := range delimiters {
		if !used[d] {
			return d
		}
	}
	longest := 0
	for _, e := range entries {
		if n := longestRun(e.Content, '`'); n > longest {
			longest = n
		}
	}
	return strings.Repeat("`", longest+1)
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Render concatenates entries into the merged document.
func Render(entries []Entry) string {
	var b strings.Builder
	delim := detectDelimiter(entries)

	total, counted := 0, 0
	for _, e := range entries {
		if e.Counted {
			total += e.Tokens
			counted++
		}
	}
	fmt.Fprintf(&b, "# Merged %d files\n", len(entries))
	if counted > 0 {
		fmt.Fprintf(&b, "# Tokens: %d\n", total)
	}

	for _, e := range entries {
		fmt.Fprintf(&b, "\n- path: %s\n", e.Path)
		if e.Counted {
			fmt.Fprintf(&b, "- tokens: %d\n", e.Tokens)
		}
		content := e.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		fmt.Fprintf(&b, "- content:\n%s\n%s%s\n", delim, content, delim)
	}
	return b.String()
}
