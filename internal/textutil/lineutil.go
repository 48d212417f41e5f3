// Package textutil holds small line-oriented helpers shared by the parser,
// the remapper and the lint facade.
package textutil

import (
	"strings"
	"unicode"

	"github.com/dotcommander/glsllint/internal/types"
)

// SplitLines splits content on \n and drops a trailing \r from each line, so
// validator output produced on Windows parses the same as on Unix.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// CountLines returns the total number of lines in content
func CountLines(content string) int {
	return strings.Count(content, "\n") + 1
}

// LineRange returns the range covering a zero-based line, starting at its
// first non-whitespace character and ending at the end of the line.
// Lines past the end of content yield a zero-width range at that line.
func LineRange(content string, line int) types.Range {
	lines := SplitLines(content)
	if line < 0 || line >= len(lines) {
		return types.Point(line, 0)
	}

	text := lines[line]
	indent := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
	if indent < 0 {
		indent = len(text)
	}

	return types.Range{
		Start: types.Position{Line: line, Column: indent},
		End:   types.Position{Line: line, Column: len(text)},
	}
}

// FirstLineRange is LineRange for line 0. Diagnostics that carry no position
// (link-stage messages) are anchored here.
func FirstLineRange(content string) types.Range {
	return LineRange(content, 0)
}
