package apiweave

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationIssue is one schema violation: the JSON pointer of the failing
// instance location and a human-readable message.
type ValidationIssue struct {
	Path    string
	Message string
}

// SchemaValidator checks a payload against an opaque schema and returns one
// issue per violated rule. A non-nil error reports a broken schema or a
// payload that could not be checked at all, not a validation failure.
type SchemaValidator interface {
	Validate(schema, payload any) ([]ValidationIssue, error)
}

// AggregateIssues renders a list of issues as a single human-readable string.
func AggregateIssues(issues []ValidationIssue) string {
	parts := make([]string, 0, len(issues))
	for _, i := range issues {
		if i.Path == "" {
			parts = append(parts, i.Message)
			continue
		}

		parts = append(parts, i.Path+": "+i.Message)
	}

	return strings.Join(parts, "; ")
}

// JSONSchemaValidator is the default SchemaValidator, backed by JSON Schema.
// The schema may be a map, a struct with json tags, a JSON string, or raw
// bytes; it is compiled per call.
type JSONSchemaValidator struct{}

func (JSONSchemaValidator) Validate(schema, payload any) ([]ValidationIssue, error) {
	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, err
	}

	instance, err := normalizeJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("normalizing payload: %w", err)
	}

	err = compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating payload: %w", err)
	}

	return flattenIssues(ve), nil
}

// compileSchema compiles an opaque schema value into a jsonschema.Schema.
// Schemas with $id may refer to themselves.
func compileSchema(schema any) (*jsonschema.Schema, error) {
	raw, err := schemaBytes(schema)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		if url == "inline://schema" {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}

		return nil, fmt.Errorf("unsupported schema ref: %s", url)
	}

	if err := compiler.AddResource("inline://schema", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	compiled, err := compiler.Compile("inline://schema")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return compiled, nil
}

// schemaBytes converts the supported schema representations to raw JSON.
func schemaBytes(schema any) ([]byte, error) {
	switch s := schema.(type) {
	case []byte:
		return s, nil
	case json.RawMessage:
		return s, nil
	case string:
		return []byte(s), nil
	default:
		raw, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("marshaling schema: %w", err)
		}

		return raw, nil
	}
}

// normalizeJSON round-trips a value through encoding/json so the validator
// sees plain maps, slices, and scalars regardless of the caller's types.
func normalizeJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// flattenIssues walks a validation error tree and collects the leaf causes,
// which carry the specific rule violations.
func flattenIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	if len(ve.Causes) == 0 {
		return []ValidationIssue{{Path: ve.InstanceLocation, Message: ve.Message}}
	}

	var issues []ValidationIssue
	for _, cause := range ve.Causes {
		issues = append(issues, flattenIssues(cause)...)
	}

	return issues
}
