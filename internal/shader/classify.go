package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnrecognizedShaderNaming is returned when a file name matches none of
// the known stage naming conventions.
var ErrUnrecognizedShaderNaming = errors.New("unrecognized shader naming")

// Convention is one file naming scheme for shader stages.
// The pattern captures the base name (including its trailing separator) in
// group 1 and the stage code in group 2; Suffix is the literal text that
// follows the code.
type Convention struct {
	Name    string
	Example string
	Field   CodeField
	Suffix  string
	pattern *regexp.Regexp
}

// Match returns the base name and stage for fileName, if it follows c.
func (c Convention) Match(fileName string) (base string, stage Stage, ok bool) {
	m := c.pattern.FindStringSubmatch(fileName)
	if m == nil {
		return "", Stage{}, false
	}
	stage, ok = Lookup(c.Field, m[2])
	if !ok {
		return "", Stage{}, false
	}
	return m[1], stage, true
}

// FileName builds the name of stage's file under this convention.
// It returns false when the stage has no code of the convention's length.
func (c Convention) FileName(base string, stage Stage) (string, bool) {
	code := stage.Code(c.Field)
	if code == "" {
		return "", false
	}
	return base + code + c.Suffix, true
}

// conventions are tried in order; first match wins. Order matters because
// the conventions overlap in form: "foo.vs.glsl" must be read as a
// two-character code with a .glsl suffix, never as something else.
var conventions = []Convention{
	{
		Name:    "char1-glsl",
		Example: "<base>.v.glsl",
		Field:   CodeChar1,
		Suffix:  ".glsl",
		pattern: regexp.MustCompile(`^(.*(?:\.|_))(v|g|f)\.glsl$`),
	},
	{
		Name:    "char2-glsl",
		Example: "<base>.vs.glsl",
		Field:   CodeChar2,
		Suffix:  ".glsl",
		pattern: regexp.MustCompile(`^(.*(?:\.|_))(vs|tc|te|gs|fs|cs)\.glsl$`),
	},
	{
		Name:    "char1-sh",
		Example: "<base>.vsh",
		Field:   CodeChar1,
		Suffix:  "sh",
		pattern: regexp.MustCompile(`^(.*\.)(v|g|f)sh$`),
	},
	{
		Name:    "char2",
		Example: "<base>.vs",
		Field:   CodeChar2,
		pattern: regexp.MustCompile(`^(.*\.)(vs|tc|te|gs|fs|cs)$`),
	},
	{
		Name:    "char4",
		Example: "<base>.vert",
		Field:   CodeChar4,
		pattern: regexp.MustCompile(`^(.*\.)(vert|frag|geom|tesc|tese|comp)$`),
	},
}

// Conventions returns the naming conventions in matching order.
func Conventions() []Convention {
	out := make([]Convention, len(conventions))
	copy(out, conventions)
	return out
}

// Tokens is the result of classifying a shader path.
type Tokens struct {
	Stage      Stage
	Convention Convention
	// BaseName is the file name up to and including the separator before
	// the stage code.
	BaseName string
	Dir      string
	// OutputName is the canonical <base>.<char4> name passed to the validator.
	OutputName string
	FullPath   string
	// Siblings are the file names of the other stages of the same program
	// under the same convention.
	Siblings []string
}

// Classify determines the stage of the shader at path from its file name.
func Classify(path string) (*Tokens, error) {
	fileName := filepath.Base(path)

	for _, c := range conventions {
		base, stage, ok := c.Match(fileName)
		if !ok {
			continue
		}

		return &Tokens{
			Stage:      stage,
			Convention: c,
			BaseName:   base,
			Dir:        filepath.Dir(path),
			OutputName: outputName(base, stage),
			FullPath:   path,
			Siblings:   siblings(c, base, stage),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnrecognizedShaderNaming, fileName)
}

// IsShaderPath reports whether path follows any known stage naming convention.
func IsShaderPath(path string) bool {
	fileName := filepath.Base(path)
	for _, c := range conventions {
		if _, _, ok := c.Match(fileName); ok {
			return true
		}
	}
	return false
}

func outputName(base string, stage Stage) string {
	name := base
	if !strings.HasSuffix(name, ".") {
		name += "."
	}
	return name + stage.Char4
}

func siblings(c Convention, base string, stage Stage) []string {
	var names []string
	for _, other := range Stages {
		if other == stage {
			continue
		}
		if name, ok := c.FileName(base, other); ok {
			names = append(names, name)
		}
	}
	return names
}

// SiblingPaths returns the sibling candidates joined with the shader's directory.
func (t *Tokens) SiblingPaths() []string {
	paths := make([]string, 0, len(t.Siblings))
	for _, name := range t.Siblings {
		paths = append(paths, filepath.Join(t.Dir, name))
	}
	return paths
}

// ExistingSiblings returns the sibling paths that exist as regular files.
func (t *Tokens) ExistingSiblings() []string {
	var found []string
	for _, p := range t.SiblingPaths() {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		found = append(found, p)
	}
	return found
}
