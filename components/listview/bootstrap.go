package listview

import (
	"context"
	"errors"
	"fmt"
)

// LoadRegistry returns the built-in registry extended with the manifest at
// path. An empty path yields the built-in lists only.
func LoadRegistry(path string, factory SourceFactory) (*Registry, error) {
	reg := NewRegistry()
	if factory != nil {
		reg.SetSourceFactory(factory)
	}
	if path == "" {
		return reg, nil
	}
	if _, err := reg.LoadManifestFile(path); err != nil {
		return nil, err
	}
	return reg, nil
}

// CheckSources fetches every registered source once and reports the ones
// that fail or return invalid records.
func CheckSources(ctx context.Context, reg DefinitionRegistry, validator RecordValidator) error {
	if reg == nil {
		return errors.New("listview: registry is required to check sources")
	}
	var checkErr error
	for _, def := range reg.Definitions() {
		src, ok := reg.Source(def.Code)
		if !ok {
			continue
		}
		records, err := src.Records(ctx)
		if err != nil {
			checkErr = errors.Join(checkErr, fmt.Errorf("source %s: %w", def.Code, err))
			continue
		}
		ctrl := NewController(def, WithRecordValidator(validator))
		if err := ctrl.Load(records); err != nil {
			checkErr = errors.Join(checkErr, fmt.Errorf("source %s: %w", def.Code, err))
		}
	}
	return checkErr
}
