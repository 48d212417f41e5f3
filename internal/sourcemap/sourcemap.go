// Package sourcemap reads version 3 source maps and translates positions in
// expanded shader text back to the original source.
package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidSourceMap is returned when a source map cannot be decoded.
var ErrInvalidSourceMap = errors.New("invalid source map")

// Original is a position in original source. Line and Column are one-based.
type Original struct {
	Source string
	Line   int
	Column int
	Name   string
}

// Mapping is a partial table from expanded-text positions to original
// positions. Line and column are one-based.
type Mapping interface {
	// Lookup returns the original position mapped exactly at line/column.
	Lookup(line, column int) (Original, bool)
	// Source names the primary original source of the mapping.
	Source() string
}

// segment is one decoded mapping entry. Coordinates are zero-based as in the
// encoded form.
type segment struct {
	genColumn int
	source    int
	line      int
	column    int
	name      int
}

// rawMap is the JSON shape of a version 3 source map.
type rawMap struct {
	Version        int       `json:"version"`
	File           string    `json:"file"`
	SourceRoot     string    `json:"sourceRoot"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Map is a decoded source map.
//
// Thread Safety: Immutable after Parse; safe for concurrent Lookup.
type Map struct {
	file    string
	sources []string
	content []*string
	names   []string
	// lines holds segments with a source, sorted by genColumn, per generated line.
	lines [][]segment
}

// Parse decodes a version 3 source map from JSON.
func Parse(data []byte) (*Map, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceMap, err)
	}
	if raw.Version != 3 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSourceMap, raw.Version)
	}

	sources := make([]string, len(raw.Sources))
	for i, s := range raw.Sources {
		if raw.SourceRoot != "" && !strings.HasPrefix(s, "/") {
			s = strings.TrimSuffix(raw.SourceRoot, "/") + "/" + s
		}
		sources[i] = s
	}

	lines, err := decodeMappings(raw.Mappings, len(sources), len(raw.Names))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceMap, err)
	}

	return &Map{
		file:    raw.File,
		sources: sources,
		content: raw.SourcesContent,
		names:   raw.Names,
		lines:   lines,
	}, nil
}

// decodeMappings decodes the "mappings" field. Field values after the first
// are deltas; the generated column resets on every line.
func decodeMappings(mappings string, numSources, numNames int) ([][]segment, error) {
	var (
		lines   [][]segment
		current []segment
		source  int
		line    int
		column  int
		name    int
	)

	i := 0
	for i <= len(mappings) {
		genColumn := 0
		for i < len(mappings) && mappings[i] != ';' {
			if mappings[i] == ',' {
				i++
				continue
			}

			var fields [5]int
			n := 0
			for i < len(mappings) && mappings[i] != ',' && mappings[i] != ';' {
				if n == len(fields) {
					return nil, fmt.Errorf("segment with more than %d fields at offset %d", len(fields), i)
				}
				v, next, err := decodeVLQ(mappings, i)
				if err != nil {
					return nil, err
				}
				fields[n] = v
				n++
				i = next
			}

			genColumn += fields[0]
			switch n {
			case 1:
				// Generated column only; unmapped.
				continue
			case 4, 5:
			default:
				return nil, fmt.Errorf("segment with %d fields on generated line %d", n, len(lines)+1)
			}

			source += fields[1]
			line += fields[2]
			column += fields[3]
			seg := segment{genColumn: genColumn, source: source, line: line, column: column, name: -1}
			if n == 5 {
				name += fields[4]
				seg.name = name
			}

			if source < 0 || source >= numSources || line < 0 || column < 0 || genColumn < 0 {
				return nil, fmt.Errorf("segment out of range on generated line %d", len(lines)+1)
			}
			if seg.name >= numNames {
				seg.name = -1
			}
			current = append(current, seg)
		}

		sort.SliceStable(current, func(a, b int) bool { return current[a].genColumn < current[b].genColumn })
		lines = append(lines, current)
		current = nil
		i++
	}

	return lines, nil
}

// Lookup returns the original position mapped exactly at the one-based
// generated line and column.
func (m *Map) Lookup(line, column int) (Original, bool) {
	if line < 1 || line > len(m.lines) || column < 1 {
		return Original{}, false
	}

	segs := m.lines[line-1]
	col := column - 1
	idx := sort.Search(len(segs), func(i int) bool { return segs[i].genColumn >= col })
	if idx == len(segs) || segs[idx].genColumn != col {
		return Original{}, false
	}

	seg := segs[idx]
	orig := Original{
		Source: m.sources[seg.source],
		Line:   seg.line + 1,
		Column: seg.column + 1,
	}
	if seg.name >= 0 {
		orig.Name = m.names[seg.name]
	}
	return orig, true
}

// Source returns the first original source, the entry file of the bundle.
func (m *Map) Source() string {
	if len(m.sources) > 0 {
		return m.sources[0]
	}
	return ""
}

// File returns the name of the generated file the map describes, if set.
func (m *Map) File() string {
	return m.file
}

// Sources returns the original source names in index order.
func (m *Map) Sources() []string {
	out := make([]string, len(m.sources))
	copy(out, m.sources)
	return out
}

// SourceContent returns the embedded content of source, if the map carries it.
func (m *Map) SourceContent(source string) (string, bool) {
	for i, s := range m.sources {
		if s != source {
			continue
		}
		if i < len(m.content) && m.content[i] != nil {
			return *m.content[i], true
		}
		return "", false
	}
	return "", false
}

// Lines returns the number of generated lines the map covers.
func (m *Map) Lines() int {
	return len(m.lines)
}
