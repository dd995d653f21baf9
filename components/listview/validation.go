package listview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchemaValidator compiles record and bulk-data schemas once and validates
// payloads against them. It satisfies RecordValidator and DataValidator.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidateRecord checks a record's fields against the definition's RecordSchema.
func (v *JSONSchemaValidator) ValidateRecord(def Definition, rec Record) error {
	if len(def.RecordSchema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def.Code+".record", def.RecordSchema)
	if err != nil {
		return err
	}
	payload, err := normalizePayload(rec.Fields)
	if err != nil {
		return fmt.Errorf("listview: normalize record %s: %w", rec.ID, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("listview: record %s failed validation: %w", rec.ID, err)
	}
	return nil
}

// ValidateData checks bulk data against the operation's DataSchema.
func (v *JSONSchemaValidator) ValidateData(def Definition, op BulkOperation, data map[string]any) error {
	if len(op.DataSchema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def.Code+".op."+op.Code, op.DataSchema)
	if err != nil {
		return err
	}
	payload, err := normalizePayload(data)
	if err != nil {
		return fmt.Errorf("listview: normalize data for %s: %w", op.Code, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("listview: data for %s failed validation: %w", op.Code, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(key string, raw map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("listview: marshal schema %s: %w", key, err)
	}
	compiler := jsonschema.NewCompiler()
	name := key + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("listview: load schema %s: %w", key, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("listview: compile schema %s: %w", key, err)
	}
	v.mu.Lock()
	v.compiled[key] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// normalizePayload round-trips through JSON so Go types (int, time.Time,
// []string) reach the validator as JSON values.
func normalizePayload(in map[string]any) (any, error) {
	if in == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
