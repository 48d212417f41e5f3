package sourcemap

import (
	"math"
	"unicode/utf16"

	"github.com/dotcommander/glsllint/internal/textutil"
	"github.com/dotcommander/glsllint/internal/types"
)

// EndOfLine is the column queried for a range end. It stands for "the rest
// of the line" because expansion changes line lengths, so the end column of
// an expanded range says little about the original. This is an
// approximation, not a precise range.
const EndOfLine = math.MaxInt32

// Resolved is a remapped zero-based position and the source it belongs to.
type Resolved struct {
	Source   string
	Position types.Position
}

// Remapper translates zero-based positions in expanded text to the original
// source through a Mapping.
//
// Thread Safety: Immutable after creation.
type Remapper struct {
	mapping    Mapping
	lineWidths []int
}

// NewRemapper creates a Remapper for expanded text described by mapping.
// Line widths are counted in UTF-16 code units, the unit glslify's source
// map columns use. Validator columns are passed through as they come.
func NewRemapper(expanded string, mapping Mapping) *Remapper {
	lines := textutil.SplitLines(expanded)
	widths := make([]int, len(lines))
	for i, l := range lines {
		widths[i] = utf16Width(l)
	}
	return &Remapper{mapping: mapping, lineWidths: widths}
}

func utf16Width(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Remap returns the original position for pos, or false when nothing on the
// line maps.
//
// An exact entry wins. Otherwise the nearest mapped column before and after
// the query on the same line are found by a linear scan, and the closer one
// is used; on a tie the earlier column wins.
func (r *Remapper) Remap(pos types.Position) (Resolved, bool) {
	if r == nil || r.mapping == nil || pos.Line < 0 {
		return Resolved{}, false
	}

	// Columns past the end of the line, EndOfLine included, query the last
	// character instead.
	col := max(pos.Column, 0)
	if width := r.lineWidth(pos.Line); col >= width {
		col = max(width-1, 0)
	}
	line, column := pos.Line+1, col+1

	if orig, ok := r.mapping.Lookup(line, column); ok {
		return resolved(orig), true
	}

	before, beforeCol, hasBefore := r.scanBefore(line, column)
	after, afterCol, hasAfter := r.scanAfter(line, column)

	switch {
	case hasBefore && hasAfter:
		if column-beforeCol <= afterCol-column {
			return resolved(before), true
		}
		return resolved(after), true
	case hasBefore:
		return resolved(before), true
	case hasAfter:
		return resolved(after), true
	default:
		return Resolved{}, false
	}
}

func (r *Remapper) scanBefore(line, column int) (Original, int, bool) {
	for c := column - 1; c >= 1; c-- {
		if orig, ok := r.mapping.Lookup(line, c); ok {
			return orig, c, true
		}
	}
	return Original{}, 0, false
}

func (r *Remapper) scanAfter(line, column int) (Original, int, bool) {
	end := r.lineWidth(line - 1)
	for c := column + 1; c <= end; c++ {
		if orig, ok := r.mapping.Lookup(line, c); ok {
			return orig, c, true
		}
	}
	return Original{}, 0, false
}

func (r *Remapper) lineWidth(line int) int {
	if line < 0 || line >= len(r.lineWidths) {
		return 0
	}
	return r.lineWidths[line]
}

// RemapRange remaps a diagnostic range. The end is queried at EndOfLine on
// its line. When the start cannot be mapped the range is returned unchanged
// with ok false; when only the end fails it collapses onto the start.
func (r *Remapper) RemapRange(rng types.Range) (source string, out types.Range, ok bool) {
	start, ok := r.Remap(rng.Start)
	if !ok {
		return "", rng, false
	}

	end, endOK := r.Remap(types.Position{Line: rng.End.Line, Column: EndOfLine})
	if !endOK || end.Source != start.Source || end.Position.Line < start.Position.Line ||
		(end.Position.Line == start.Position.Line && end.Position.Column < start.Position.Column) {
		end = start
	}

	return start.Source, types.Range{Start: start.Position, End: end.Position}, true
}

func resolved(orig Original) Resolved {
	return Resolved{
		Source: orig.Source,
		Position: types.Position{
			Line:   max(orig.Line-1, 0),
			Column: max(orig.Column-1, 0),
		},
	}
}
