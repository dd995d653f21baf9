package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-listview/components/listview"
)

// FixtureSource reads records from a YAML or JSON file on every call. The
// file holds either a bare list of records or a document with a `records` key.
type FixtureSource struct {
	Path string
}

var _ listview.Source = FixtureSource{}

type fixtureDocument struct {
	Records []listview.Record `json:"records" yaml:"records"`
}

func (s FixtureSource) Records(ctx context.Context) ([]listview.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("sources: read fixture: %w", err)
	}
	records, err := DecodeRecords(filepath.Ext(s.Path), data)
	if err != nil {
		return nil, fmt.Errorf("sources: fixture %s: %w", s.Path, err)
	}
	return records, nil
}

// DecodeRecords parses a record list. ext selects JSON (".json") or YAML.
func DecodeRecords(ext string, data []byte) ([]listview.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var (
		records []listview.Record
		doc     fixtureDocument
	)
	if strings.EqualFold(ext, ".json") {
		if data[0] == '[' {
			if err := json.Unmarshal(data, &records); err != nil {
				return nil, err
			}
			return records, nil
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Records, nil
	}
	if err := yaml.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Records, nil
}

// MemorySource is a mutable in-memory source for demos and tests.
type MemorySource struct {
	mu      sync.RWMutex
	records []listview.Record
	err     error
}

// NewMemorySource seeds the source with a copy of records.
func NewMemorySource(records []listview.Record) *MemorySource {
	m := &MemorySource{}
	m.Set(records)
	return m
}

// Set replaces the records served by the source.
func (m *MemorySource) Set(records []listview.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = cloneRecords(records)
}

// Fail makes subsequent Records calls return err. A nil err clears it.
func (m *MemorySource) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemorySource) Records(context.Context) ([]listview.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return cloneRecords(m.records), nil
}

func cloneRecords(records []listview.Record) []listview.Record {
	out := make([]listview.Record, len(records))
	for i, rec := range records {
		fields := make(map[string]any, len(rec.Fields))
		for k, v := range rec.Fields {
			fields[k] = v
		}
		out[i] = listview.Record{ID: rec.ID, Fields: fields, Tags: append([]string(nil), rec.Tags...)}
	}
	return out
}
