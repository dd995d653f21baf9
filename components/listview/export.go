package listview

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Report is the structured document produced by an export: operation type, an
// optional date range, the generation timestamp, and the data snapshot.
type Report struct {
	Kind        string     `json:"kind" yaml:"kind"`
	Type        string     `json:"type" yaml:"type"`
	Format      string     `json:"-" yaml:"-"`
	From        *time.Time `json:"from,omitempty" yaml:"from,omitempty"`
	To          *time.Time `json:"to,omitempty" yaml:"to,omitempty"`
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	Columns     []string   `json:"columns" yaml:"columns"`
	Records     []Record   `json:"records" yaml:"records"`
	Summary     Stats      `json:"summary" yaml:"summary"`
}

// NewReport snapshots records for a definition.
func NewReport(def Definition, records []Record, generatedAt time.Time) Report {
	kind := def.Report.Kind
	if kind == "" {
		kind = def.Code
		if idx := strings.LastIndex(kind, "."); idx >= 0 {
			kind = kind[idx+1:]
		}
	}
	typ := def.Report.Type
	if typ == "" {
		typ = "selection"
	}
	format := def.Report.Format
	if format == "" {
		format = FormatCSV
	}
	return Report{
		Kind:        kind,
		Type:        typ,
		Format:      format,
		GeneratedAt: generatedAt,
		Columns:     def.Schema.Columns(),
		Records:     cloneRecords(records),
		Summary:     ComputeStats(def.Stats, records),
	}
}

// WithRange returns a copy of the report bound to a date range.
func (r Report) WithRange(from, to time.Time) Report {
	r.From = &from
	r.To = &to
	return r
}

// Filename returns `<kind>-<type>-<YYYY-MM-DD>.<ext>`.
func (r Report) Filename() string {
	return fmt.Sprintf("%s-%s-%s.%s", r.Kind, r.Type, r.GeneratedAt.Format(time.DateOnly), r.ext())
}

func (r Report) ext() string {
	switch strings.ToLower(r.Format) {
	case FormatJSON:
		return "json"
	case FormatYAML, "yml":
		return "yaml"
	default:
		return "csv"
	}
}

// ContentType returns the MIME type matching the report format.
func (r Report) ContentType() string {
	switch r.ext() {
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	default:
		return "text/csv"
	}
}

// Encode writes the report in its format.
func (r Report) Encode(w io.Writer) error {
	switch r.ext() {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.encodeCSV(w)
	}
}

// Bytes encodes the report into memory.
func (r Report) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r Report) encodeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"id"}, r.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range r.Records {
		row := make([]string, 0, len(header))
		row = append(row, rec.ID)
		for _, col := range r.Columns {
			row = append(row, rec.String(col))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileExporter writes reports into a directory.
type FileExporter struct {
	Dir string
}

// Export satisfies Exporter.
func (e FileExporter) Export(_ context.Context, report Report) error {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("listview: create export dir %s: %w", dir, err)
	}
	name := report.Filename()
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrUnsafeFilename, name)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("listview: create export %s: %w", path, err)
	}
	if err := report.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("listview: write export %s: %w", path, err)
	}
	return f.Close()
}

// MemoryExporter keeps reports in memory, for demos and tests.
type MemoryExporter struct {
	mu      sync.Mutex
	reports []Report
}

// Export satisfies Exporter.
func (e *MemoryExporter) Export(_ context.Context, report Report) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, report)
	return nil
}

// Reports returns every captured report.
func (e *MemoryExporter) Reports() []Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Report(nil), e.reports...)
}

// Last returns the most recent report.
func (e *MemoryExporter) Last() (Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.reports) == 0 {
		return Report{}, false
	}
	return e.reports[len(e.reports)-1], true
}
