package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompactFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCompactFormatter(&buf, false).WithColor(false).Format(mixedSummary()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := []string{
		"b.frag:5:12: error: 'foo' : undeclared identifier",
		"b.frag:1:1: warning: unused variable",
		"c.geom: warning: not validated",
		"d.comp: error: reading d.comp: permission denied",
		"4 shaders, 1 errors, 1 warnings",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompactFormatter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCompactFormatter(&buf, true).Format(cleanSummary()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("quiet clean run printed %q", buf.String())
	}
}
