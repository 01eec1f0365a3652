package task

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/tasks.schema.json
var defaultSchema []byte

const defaultSchemaURL = "tasks.schema.json"

// DefaultSchema returns the built-in JSON Schema for the store document.
func DefaultSchema() []byte {
	return bytes.Clone(defaultSchema)
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the embedded schema. Empty uses the built-in one.
	SchemaPath string
	// SkipSchema disables JSON Schema validation and runs only the semantic checks.
	SkipSchema bool
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}
}

func (r *ValidationResult) fail(path string, err error) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{Path: path, Err: err})
}

// ValidateFile checks the store document at path against the schema and then
// against the store invariants. The returned error is non-nil only when the
// file cannot be read or the schema cannot be compiled.
func ValidateFile(path string, opts ValidationOptions) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	result := newResult()

	if !opts.SkipSchema {
		schema, err := compileSchema(opts.SchemaPath)
		if err != nil {
			return nil, err
		}
		result.UsedSchema = true

		doc, err := decodeRaw(data)
		if err != nil {
			result.fail("", fmt.Errorf("invalid JSON: %w", err))
			return result, nil
		}
		if err := schema.Validate(doc); err != nil {
			result.Valid = false
			appendSchemaErrors(result, err)
		}
	}

	m, err := Decode(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		return result, nil
	}

	semantic := m.Validate()
	if !semantic.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, semantic.Errors...)
	}
	result.Warnings = append(result.Warnings, semantic.Warnings...)

	return result, nil
}

// Validate checks the store invariants that the schema cannot express.
func (m *Manager) Validate() *ValidationResult {
	result := newResult()

	ids := make([]int, 0, len(m.Tasks))
	for id := range m.Tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	maxID := 0
	for _, id := range ids {
		t := m.Tasks[id]
		path := fmt.Sprintf("tasks[%d]", id)
		if t == nil {
			result.fail(path, fmt.Errorf("task is null"))
			continue
		}
		if t.ID != id {
			result.fail(path+".id", fmt.Errorf("key %d holds task id %d", id, t.ID))
		}
		if id < 1 {
			result.fail(path+".id", fmt.Errorf("must be positive, got %d", id))
		}
		if !t.Status.Valid() {
			result.fail(path+".status", fmt.Errorf("invalid status %q", t.Status))
		}
		if t.UpdatedAt.Before(t.CreatedAt.Time) {
			result.fail(path+".updated_at", fmt.Errorf("%s is before created_at %s", t.UpdatedAt, t.CreatedAt))
		}
		if strings.TrimSpace(t.Description) == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.description: empty", path))
		}
		if id > maxID {
			maxID = id
		}
	}

	if m.NextID <= maxID {
		result.fail("next_id", fmt.Errorf("must be greater than the highest id %d, got %d", maxID, m.NextID))
	}

	return result
}

func compileSchema(schemaPath string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if schemaPath == "" {
		if err := compiler.AddResource(defaultSchemaURL, bytes.NewReader(defaultSchema)); err != nil {
			return nil, fmt.Errorf("load built-in schema: %w", err)
		}
		schema, err := compiler.Compile(defaultSchemaURL)
		if err != nil {
			return nil, fmt.Errorf("compile built-in schema: %w", err)
		}
		return schema, nil
	}

	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", absPath, err)
	}
	return schema, nil
}

func decodeRaw(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}

	return b.String()
}
