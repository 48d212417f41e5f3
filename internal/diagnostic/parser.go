// Package diagnostic turns glslangValidator's line-oriented output into
// typed diagnostics attributed to the submitted shader units.
package diagnostic

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dotcommander/glsllint/internal/shader"
	"github.com/dotcommander/glsllint/internal/textutil"
	"github.com/dotcommander/glsllint/internal/types"
)

// compilePattern matches "<severity>: <a>:<b>: <message>".
// The validator prints the source-string number first and the line second,
// so group 3 is the line and group 2 is the column.
var compilePattern = regexp.MustCompile(`^([\w \-]+): (\d+):(\d+): (.*)$`)

// linkPatterns holds one compiled link-diagnostic pattern per stage name.
var linkPatterns = buildLinkPatterns()

func buildLinkPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(shader.Stages))
	for _, s := range shader.Stages {
		patterns[s.Name] = linkPatternFor(s.Name)
	}
	return patterns
}

func linkPatternFor(stageName string) *regexp.Regexp {
	return regexp.MustCompile(`^([\w \-]+): Linking ` + regexp.QuoteMeta(stageName) + ` stage: (.*)$`)
}

func linkPattern(stage shader.Stage) *regexp.Regexp {
	if re, ok := linkPatterns[stage.Name]; ok {
		return re
	}
	return linkPatternFor(stage.Name)
}

// Parse extracts diagnostics from validator output.
//
// Units are processed in order. For each unit, a line ending with the unit's
// canonical name opens that unit's compile block; following lines that look
// like diagnostics belong to it until a line does not match. When only one
// unit was submitted every line is considered. Link-stage lines carry no
// position and are anchored at firstLine.
func Parse(units []shader.Unit, output string, firstLine types.Range) []types.Diagnostic {
	lines := textutil.SplitLines(output)
	single := len(units) == 1

	var diags []types.Diagnostic
	for _, unit := range units {
		link := linkPattern(unit.Stage)
		inBlock := false

		for _, line := range lines {
			if strings.HasSuffix(line, unit.Name) {
				inBlock = true
			} else if inBlock || single {
				if d, ok := parseCompileLine(line, unit.Path); ok {
					diags = append(diags, d)
				} else {
					inBlock = false
				}
			}

			if m := link.FindStringSubmatch(line); m != nil {
				diags = append(diags, types.Diagnostic{
					Severity: types.ParseSeverity(m[1]),
					Message:  strings.TrimSpace(m[2]),
					File:     unit.Path,
					Range:    firstLine,
					Source:   types.SourceLink,
				})
			}
		}
	}

	return diags
}

// ParseLine parses a single compile diagnostic line for file.
func ParseLine(line, file string) (types.Diagnostic, bool) {
	return parseCompileLine(strings.TrimSuffix(line, "\r"), file)
}

func parseCompileLine(line, file string) (types.Diagnostic, bool) {
	m := compilePattern.FindStringSubmatch(line)
	if m == nil {
		return types.Diagnostic{}, false
	}

	col, err := strconv.Atoi(m[2])
	if err != nil {
		return types.Diagnostic{}, false
	}
	row, err := strconv.Atoi(m[3])
	if err != nil {
		return types.Diagnostic{}, false
	}

	return types.Diagnostic{
		Severity: types.ParseSeverity(m[1]),
		Message:  strings.TrimSpace(m[4]),
		File:     file,
		Range:    types.Point(row-1, col-1),
		Source:   types.SourceCompile,
	}, true
}
