// Package types provides shared types used across the glsllint codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

import (
	"fmt"
	"strings"
)

// Severity is the level of a diagnostic as understood by the host editor.
type Severity string

// Severity level constants.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity normalizes a validator severity token.
// Matching is case-insensitive; anything other than error, warning or info
// becomes SeverityWarning.
func ParseSeverity(s string) Severity {
	switch sev := Severity(strings.ToLower(s)); sev {
	case SeverityError, SeverityWarning, SeverityInfo:
		return sev
	default:
		return SeverityWarning
	}
}

// Rank orders severities for fail-on comparisons (info < warning < error).
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Position is a zero-based line/column pair.
type Position struct {
	Line   int
	Column int
}

// Range is a [start, end] pair of positions.
type Range struct {
	Start Position
	End   Position
}

// Point returns a zero-width range at line/column, clamping negatives to zero.
func Point(line, column int) Range {
	p := Position{Line: max(line, 0), Column: max(column, 0)}
	return Range{Start: p, End: p}
}

// Array returns the range in the host's [[line, col], [line, col]] shape.
func (r Range) Array() [2][2]int {
	return [2][2]int{
		{r.Start.Line, r.Start.Column},
		{r.End.Line, r.End.Column},
	}
}

// Diagnostic sources.
const (
	SourceCompile = "glslang-compile"
	SourceLink    = "glslang-link"
)

// Diagnostic is a single message produced for a shader file.
type Diagnostic struct {
	Severity Severity
	Message  string
	File     string
	Range    Range
	// Source names the validator phase that produced the message.
	Source string
}

// String renders the diagnostic as file:line:col: severity: message using
// one-based coordinates.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		d.File, d.Range.Start.Line+1, d.Range.Start.Column+1, d.Severity, d.Message)
}
