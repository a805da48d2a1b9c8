package text

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines printed around each change
const diffContext = 1

// 🔍 Diff renders a line-oriented diff of a rewrite, for previews. It
// returns the empty string when before and after are equal.
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- a/%s\n+++ b/%s\n", path, path)

	for i, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writePrefixed(&buf, "-", lines)
		case diffmatchpatch.DiffInsert:
			writePrefixed(&buf, "+", lines)
		case diffmatchpatch.DiffEqual:
			first, last := i == 0, i == len(diffs)-1
			head, tail := diffContext, diffContext
			if first {
				head = 0
			}
			if last {
				tail = 0
			}
			if len(lines) <= head+tail {
				writePrefixed(&buf, " ", lines)
				continue
			}
			writePrefixed(&buf, " ", lines[:head])
			buf.WriteString("@@\n")
			writePrefixed(&buf, " ", lines[len(lines)-tail:])
		}
	}

	return buf.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func writePrefixed(buf *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		buf.WriteString(prefix)
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
}
