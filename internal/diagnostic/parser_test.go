package diagnostic

import (
	"strings"
	"testing"

	"github.com/dotcommander/glsllint/internal/shader"
	"github.com/dotcommander/glsllint/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstLine = types.Range{
	Start: types.Position{Line: 0, Column: 0},
	End:   types.Position{Line: 0, Column: 14},
}

func unit(stage shader.Stage, name, path string) shader.Unit {
	return shader.Unit{Stage: stage, Name: name, Path: path}
}

func TestParseSingleUnit(t *testing.T) {
	u := unit(shader.Vertex, "foo.vert", "/src/foo.v.glsl")
	output := strings.Join([]string{
		"/tmp/glsllint-1/foo.vert",
		"ERROR: 12:5: 'foo' : undeclared identifier",
		"ERROR: 1 compilation errors.  No code generated.",
		"",
	}, "\n")

	diags := Parse([]shader.Unit{u}, output, firstLine)
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, types.SeverityError, d.Severity)
	assert.Equal(t, "'foo' : undeclared identifier", d.Message)
	assert.Equal(t, "/src/foo.v.glsl", d.File)
	// Group 3 is the line and group 2 the column, both one-based.
	assert.Equal(t, types.Point(4, 11), d.Range)
	assert.Equal(t, d.Range.Start, d.Range.End)
	assert.Equal(t, types.SourceCompile, d.Source)
}

func TestParseSingleUnitWithoutMarker(t *testing.T) {
	u := unit(shader.Fragment, "foo.frag", "foo.frag")
	output := "WARNING: 0:3: '#extension' : extension not supported\n"

	diags := Parse([]shader.Unit{u}, output, firstLine)
	require.Len(t, diags, 1)
	assert.Equal(t, types.SeverityWarning, diags[0].Severity)
	assert.Equal(t, types.Point(2, 0), diags[0].Range)
}

func TestParseClampsNonPositive(t *testing.T) {
	u := unit(shader.Fragment, "foo.frag", "foo.frag")
	diags := Parse([]shader.Unit{u}, "ERROR: 0:0: '' : syntax error\n", firstLine)
	require.Len(t, diags, 1)
	assert.Equal(t, types.Point(0, 0), diags[0].Range)
}

func TestParseSeverityNormalization(t *testing.T) {
	u := unit(shader.Vertex, "a.vert", "a.vert")
	output := strings.Join([]string{
		"error: 0:1: lower",
		"Warning: 0:2: mixed",
		"INFO: 0:3: info",
		"NOTE: 0:4: unknown",
		"internal error: 0:5: spaced",
	}, "\n")

	diags := Parse([]shader.Unit{u}, output, firstLine)
	require.Len(t, diags, 5)

	got := make([]types.Severity, 0, len(diags))
	for _, d := range diags {
		got = append(got, d.Severity)
	}
	assert.Equal(t, []types.Severity{
		types.SeverityError,
		types.SeverityWarning,
		types.SeverityInfo,
		types.SeverityWarning,
		types.SeverityWarning,
	}, got)
}

func TestParseMultiUnitAttribution(t *testing.T) {
	a := unit(shader.Vertex, "a.vert", "/src/a.vert")
	b := unit(shader.Fragment, "b.frag", "/src/b.frag")
	output := strings.Join([]string{
		"/tmp/x/a.vert",
		"ERROR: 0:4: 'pos' : undeclared identifier",
		"",
		"/tmp/x/b.frag",
		"WARNING: 0:9: 'color' : unused",
		"",
	}, "\r\n")

	diags := Parse([]shader.Unit{a, b}, output, firstLine)
	require.Len(t, diags, 2)

	assert.Equal(t, "/src/a.vert", diags[0].File)
	assert.Equal(t, "'pos' : undeclared identifier", diags[0].Message)
	assert.Equal(t, 3, diags[0].Range.Start.Line)

	assert.Equal(t, "/src/b.frag", diags[1].File)
	assert.Equal(t, types.SeverityWarning, diags[1].Severity)
	assert.Equal(t, 8, diags[1].Range.Start.Line)
}

func TestParseMultiUnitIgnoresLinesOutsideBlocks(t *testing.T) {
	a := unit(shader.Vertex, "a.vert", "a.vert")
	b := unit(shader.Fragment, "a.frag", "a.frag")
	output := strings.Join([]string{
		"ERROR: 0:1: before any marker",
		"/tmp/x/a.vert",
		"ERROR: 0:2: in vertex",
		"ERROR: 1 compilation errors.  No code generated.",
		"ERROR: 0:3: after block end",
	}, "\n")

	diags := Parse([]shader.Unit{a, b}, output, firstLine)
	require.Len(t, diags, 1)
	assert.Equal(t, "in vertex", diags[0].Message)
	assert.Equal(t, "a.vert", diags[0].File)
}

func TestParseLinkDiagnostics(t *testing.T) {
	a := unit(shader.Vertex, "a.vert", "/src/a.vert")
	b := unit(shader.Fragment, "a.frag", "/src/a.frag")
	output := strings.Join([]string{
		"/tmp/x/a.vert",
		"/tmp/x/a.frag",
		"Linked vertex stage:",
		"ERROR: Linking vertex stage: Missing entry point: Each stage requires one entry point",
		"Linked fragment stage:",
		"WARNING: Linking fragment stage: some message with 12:5: numbers ",
	}, "\n")

	diags := Parse([]shader.Unit{a, b}, output, firstLine)
	require.Len(t, diags, 2)

	assert.Equal(t, "/src/a.vert", diags[0].File)
	assert.Equal(t, types.SeverityError, diags[0].Severity)
	assert.Equal(t, "Missing entry point: Each stage requires one entry point", diags[0].Message)
	assert.Equal(t, firstLine, diags[0].Range)
	assert.Equal(t, types.SourceLink, diags[0].Source)

	assert.Equal(t, "/src/a.frag", diags[1].File)
	assert.Equal(t, types.SeverityWarning, diags[1].Severity)
	assert.Equal(t, "some message with 12:5: numbers", diags[1].Message)
	assert.Equal(t, firstLine, diags[1].Range)
}

func TestParseLinkStageNameIsExact(t *testing.T) {
	tc := unit(shader.TessControl, "t.tesc", "t.tesc")
	output := "ERROR: Linking tessellation control stage: bad patch size\n"

	diags := Parse([]shader.Unit{tc}, output, firstLine)
	require.Len(t, diags, 1)
	assert.Equal(t, "bad patch size", diags[0].Message)

	ev := unit(shader.TessEvaluation, "t.tese", "t.tese")
	assert.Empty(t, Parse([]shader.Unit{ev}, output, firstLine))
}

func TestParseEmpty(t *testing.T) {
	u := unit(shader.Compute, "c.comp", "c.comp")
	assert.Empty(t, Parse([]shader.Unit{u}, "", firstLine))
	assert.Empty(t, Parse(nil, "ERROR: 0:1: orphan", firstLine))
}

func TestParseLine(t *testing.T) {
	d, ok := ParseLine("ERROR: 0:7: 'x' : redefinition\r", "x.frag")
	require.True(t, ok)
	assert.Equal(t, "'x' : redefinition", d.Message)
	assert.Equal(t, 6, d.Range.Start.Line)

	_, ok = ParseLine("Linked vertex stage:", "x.frag")
	assert.False(t, ok)
}
