// Package shader classifies shader files by stage from their file names.
//
// Shader projects name their stage files using several historical
// conventions (foo.v.glsl, foo.vs.glsl, foo.vsh, foo.vs, foo.vert). The
// classifier recognizes all of them, derives the canonical four-character
// name the validator expects, and lists the sibling files that would hold
// the other stages of the same program.
package shader

// Stage describes one shader stage and the codes used to name its files.
type Stage struct {
	// Char1 is the single-character code. Only vertex, fragment and
	// geometry have one.
	Char1 string
	// Char2 is the two-character code.
	Char2 string
	// Char4 is the canonical four-character code, also the extension the
	// validator uses to infer the stage.
	Char4 string
	// Name is the human-readable name, matching the validator's
	// "Linking <name> stage" messages.
	Name string
}

// The six stages the validator understands.
var (
	Vertex         = Stage{Char1: "v", Char2: "vs", Char4: "vert", Name: "vertex"}
	Fragment       = Stage{Char1: "f", Char2: "fs", Char4: "frag", Name: "fragment"}
	Geometry       = Stage{Char1: "g", Char2: "gs", Char4: "geom", Name: "geometry"}
	TessEvaluation = Stage{Char2: "te", Char4: "tese", Name: "tessellation evaluation"}
	TessControl    = Stage{Char2: "tc", Char4: "tesc", Name: "tessellation control"}
	Compute        = Stage{Char2: "cs", Char4: "comp", Name: "compute"}
)

// Stages lists every stage in sibling-search order.
var Stages = []Stage{Vertex, Fragment, Geometry, TessEvaluation, TessControl, Compute}

// CodeField selects which code of a Stage a naming convention uses.
type CodeField int

const (
	CodeChar1 CodeField = iota
	CodeChar2
	CodeChar4
)

// String returns the field name.
func (f CodeField) String() string {
	switch f {
	case CodeChar1:
		return "char1"
	case CodeChar2:
		return "char2"
	case CodeChar4:
		return "char4"
	default:
		return "unknown"
	}
}

// Code returns the stage's code for the given field. It is empty when the
// stage has no code of that length.
func (s Stage) Code(field CodeField) string {
	switch field {
	case CodeChar1:
		return s.Char1
	case CodeChar2:
		return s.Char2
	case CodeChar4:
		return s.Char4
	default:
		return ""
	}
}

// String returns the human-readable stage name.
func (s Stage) String() string {
	return s.Name
}

// IsZero reports whether s is the zero Stage.
func (s Stage) IsZero() bool {
	return s == Stage{}
}

// Lookup returns the stage whose code in field equals code.
func Lookup(field CodeField, code string) (Stage, bool) {
	if code == "" {
		return Stage{}, false
	}
	for _, s := range Stages {
		if s.Code(field) == code {
			return s, true
		}
	}
	return Stage{}, false
}

// ByChar1 looks a stage up by its single-character code.
func ByChar1(code string) (Stage, bool) { return Lookup(CodeChar1, code) }

// ByChar2 looks a stage up by its two-character code.
func ByChar2(code string) (Stage, bool) { return Lookup(CodeChar2, code) }

// ByChar4 looks a stage up by its canonical four-character code.
func ByChar4(code string) (Stage, bool) { return Lookup(CodeChar4, code) }
