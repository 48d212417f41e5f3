// Package cue checks glsllint configuration files against an embedded CUE
// schema. Schema problems are advisory: they are reported as warnings and
// never stop a lint run.
package cue

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// ValidationError represents a schema violation in a config file
type ValidationError struct {
	File     string
	Field    string
	Message  string
	Severity string
}

func (e ValidationError) String() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas compiles every embedded .cue file.
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		// embed.FS paths are always slash-separated.
		content, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			continue
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("compiling schema %s: %w", entry.Name(), instErr)
		}

		// config.cue -> config
		v.schemas[strings.TrimSuffix(entry.Name(), ".cue")] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas loaded")
	}

	return nil
}

// ValidateConfig validates decoded config data against #Config.
func (v *Validator) ValidateConfig(data map[string]any) ([]ValidationError, error) {
	schema, ok := v.schemas["config"]
	if !ok {
		return nil, nil
	}
	return v.validateAgainstSchema(schema, data, "config")
}

// ValidateFile parses a config file and validates it. A file that cannot be
// parsed yields a single error-severity issue.
func (v *Validator) ValidateFile(path string) ([]ValidationError, error) {
	data, err := ParseConfigFile(path)
	if err != nil {
		return []ValidationError{{
			File:     path,
			Message:  err.Error(),
			Severity: "error",
		}}, nil
	}

	issues, err := v.ValidateConfig(data)
	for i := range issues {
		issues[i].File = path
	}
	return issues, err
}

// validateAgainstSchema validates data against the #<Type> definition of schema.
func (v *Validator) validateAgainstSchema(schema cue.Value, data map[string]any, schemaType string) ([]ValidationError, error) {
	dataValue := v.ctx.Encode(data)
	if encErr := dataValue.Err(); encErr != nil {
		return nil, fmt.Errorf("error encoding data: %w", encErr)
	}

	defPath := cue.ParsePath("#" + strings.ToUpper(schemaType[:1]) + schemaType[1:])
	def := schema.LookupPath(defPath)
	if !def.Exists() {
		return nil, nil
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return extractErrorsFromCUE(err), nil
	}

	return nil, nil
}

// extractErrorsFromCUE turns a CUE error list into one issue per field.
func extractErrorsFromCUE(err error) []ValidationError {
	byField := make(map[string]string)
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if _, seen := byField[field]; seen {
			continue
		}
		format, args := e.Msg()
		byField[field] = fmt.Sprintf(format, args...)
	}

	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	issues := make([]ValidationError, 0, len(fields))
	for _, f := range fields {
		issues = append(issues, ValidationError{
			Field:    f,
			Message:  byField[f],
			Severity: "warning",
		})
	}
	return issues
}

// ParseConfigFile decodes a .glsllintrc file. JSON is valid YAML, so one
// decoder serves every supported extension.
func ParseConfigFile(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var data map[string]any
	if err := yamlv3.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if data == nil {
		data = make(map[string]any)
	}
	return data, nil
}
