package shader

import (
	"fmt"
	"os"
)

// Unit is one file submitted to the validator: its stage, the canonical
// name the validator sees, the original path, and the text to validate.
// A Unit belongs to the single lint invocation that built it.
type Unit struct {
	Stage   Stage
	Name    string
	Path    string
	Content string
}

// NewUnit builds a Unit from classified tokens and the text to validate.
func NewUnit(t *Tokens, content string) Unit {
	return Unit{
		Stage:   t.Stage,
		Name:    t.OutputName,
		Path:    t.FullPath,
		Content: content,
	}
}

// LoadUnit classifies path and reads its content from disk.
func LoadUnit(path string) (Unit, error) {
	tokens, err := Classify(path)
	if err != nil {
		return Unit{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Unit{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return NewUnit(tokens, string(content)), nil
}

// SiblingUnits loads every existing sibling of t from disk, in stage order.
// Siblings that cannot be read are skipped.
func SiblingUnits(t *Tokens) []Unit {
	var units []Unit
	for _, p := range t.ExistingSiblings() {
		u, err := LoadUnit(p)
		if err != nil {
			continue
		}
		units = append(units, u)
	}
	return units
}
