// Package baseline records known diagnostics so later runs report only new
// ones. Baselines are stored as JSON or YAML depending on the file extension.
package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/glsllint/internal/types"
)

// DefaultFile is the baseline file name used when none is given.
const DefaultFile = ".glsllintbaseline.json"

var (
	doubleQuoted = regexp.MustCompile(`"[^"]+"`)
	singleQuoted = regexp.MustCompile(`(^|\s)'([^']+)'(\s|$)`)
	numbers      = regexp.MustCompile(`\b\d+\b`)
)

// Baseline represents a snapshot of known diagnostics that should be ignored
type Baseline struct {
	Version      string   `json:"version" yaml:"version"`
	CreatedAt    string   `json:"created_at" yaml:"created_at"`
	Fingerprints []string `json:"fingerprints" yaml:"fingerprints"`

	root  string
	index map[string]bool
}

// CreateBaseline creates a new baseline from diagnostics. File paths are
// fingerprinted relative to root so the baseline survives a checkout move.
func CreateBaseline(root string, diags []types.Diagnostic) *Baseline {
	fingerprints := make([]string, 0, len(diags))
	index := make(map[string]bool)

	for _, d := range diags {
		fp := fingerprint(root, d)
		if !index[fp] {
			fingerprints = append(fingerprints, fp)
			index[fp] = true
		}
	}

	// Sort for deterministic output
	sort.Strings(fingerprints)

	return &Baseline{
		Version:      "1.0",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Fingerprints: fingerprints,
		root:         root,
		index:        index,
	}
}

// LoadBaseline loads a baseline file; .yaml and .yml files are read as YAML,
// anything else as JSON.
func LoadBaseline(path, root string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if isYAML(path) {
		err = yaml.Unmarshal(data, &b)
	} else {
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}

	b.root = root
	b.index = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = true
	}

	return &b, nil
}

// SaveBaseline writes the baseline in the format implied by path.
func (b *Baseline) SaveBaseline(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(b)
	} else {
		data, err = json.MarshalIndent(b, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}

// IsKnown checks if a diagnostic is in the baseline
func (b *Baseline) IsKnown(d types.Diagnostic) bool {
	if b.index == nil {
		return false
	}
	return b.index[fingerprint(b.root, d)]
}

// Len returns the number of distinct fingerprints.
func (b *Baseline) Len() int {
	return len(b.Fingerprints)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// fingerprint hashes file + source + normalized message.
// Positions are left out as they shift with unrelated edits.
func fingerprint(root string, d types.Diagnostic) string {
	file := d.File
	if root != "" {
		if rel, err := filepath.Rel(root, file); err == nil && !strings.HasPrefix(rel, "..") {
			file = rel
		}
	}
	file = filepath.ToSlash(file)

	data := fmt.Sprintf("%s|%s|%s", file, d.Source, normalizeMessage(d.Message))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// normalizeMessage replaces quoted identifiers and numbers with placeholders
// so that similar diagnostics share a fingerprint.
func normalizeMessage(msg string) string {
	msg = doubleQuoted.ReplaceAllString(msg, `"*"`)

	// Only whitespace-delimited quotes; glslang quotes identifiers this way.
	msg = singleQuoted.ReplaceAllString(msg, `$1'*'$3`)

	msg = numbers.ReplaceAllString(msg, `N`)

	return strings.Join(strings.Fields(msg), " ")
}
