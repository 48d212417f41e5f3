package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"ERROR", SeverityError},
		{"error", SeverityError},
		{"Warning", SeverityWarning},
		{"INFO", SeverityInfo},
		{"bogus", SeverityWarning},
		{"", SeverityWarning},
		{"NOTE", SeverityWarning},
		{"UNIMPLEMENTED", SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeverity(tt.in))
		})
	}
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityError.Rank(), SeverityWarning.Rank())
	assert.Greater(t, SeverityWarning.Rank(), SeverityInfo.Rank())
}

func TestPointClampsNegatives(t *testing.T) {
	r := Point(-3, -1)
	assert.Equal(t, Position{}, r.Start)
	assert.Equal(t, r.Start, r.End)

	r = Point(4, 2)
	assert.Equal(t, [2][2]int{{4, 2}, {4, 2}}, r.Array())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  "'foo' : undeclared identifier",
		File:     "shader.frag",
		Range:    Point(11, 4),
	}
	assert.Equal(t, "shader.frag:12:5: error: 'foo' : undeclared identifier", d.String())
}
