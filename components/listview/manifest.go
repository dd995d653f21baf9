package listview

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ManifestDocument models a YAML manifest describing list definitions.
type ManifestDocument struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Lists   []ManifestList `json:"lists" yaml:"lists"`
	Source  string         `json:"-" yaml:"-"`
}

// ManifestList describes one list: its definition and where its records come from.
type ManifestList struct {
	Definition Definition     `json:"definition" yaml:"definition"`
	Source     ManifestSource `json:"source,omitempty" yaml:"source,omitempty"`
	Records    []Record       `json:"records,omitempty" yaml:"records,omitempty"`
}

// ManifestSource names an external record source. Kind is resolved by the
// registry's SourceFactory (e.g. "fixture" with Path, "http" with URL).
type ManifestSource struct {
	Kind    string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Path    string            `json:"path,omitempty" yaml:"path,omitempty"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

func (s ManifestSource) isZero() bool {
	return s.Kind == "" && s.Path == "" && s.URL == ""
}

// SourceFactory builds a Source from manifest metadata.
type SourceFactory func(src ManifestSource) (Source, error)

// SetSourceFactory installs the factory used for manifest sources.
func (r *Registry) SetSourceFactory(f SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sourceFactory = f
}

// LoadManifestFile reads a manifest from disk, registers it, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*ManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers definitions and sources from a decoded manifest.
// Inline records win over an external source.
func (r *Registry) LoadManifestDocument(doc *ManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("listview: manifest document is nil")
	}
	r.mu.RLock()
	factory := r.sourceFactory
	r.mu.RUnlock()
	for _, list := range doc.Lists {
		code := list.Definition.Code
		if err := r.RegisterDefinition(list.Definition); err != nil {
			return fmt.Errorf("listview: register list %s from %s: %w", code, doc.Source, err)
		}
		r.recordManifest(code, doc.Source)
		switch {
		case len(list.Records) > 0:
			if err := r.RegisterSource(code, StaticSource(list.Records)); err != nil {
				return err
			}
		case !list.Source.isZero():
			if factory == nil {
				return fmt.Errorf("listview: list %s declares source %q but no source factory is configured", code, list.Source.Kind)
			}
			src, err := factory(list.Source)
			if err != nil {
				return fmt.Errorf("listview: build source for %s: %w", code, err)
			}
			if err := r.RegisterSource(code, src); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) recordManifest(code, source string) {
	if source == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifests[code] = source
}

// ReadManifest loads a manifest file without registering it.
func ReadManifest(path string) (*ManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("listview: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("listview: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader. Unknown keys are rejected.
func DecodeManifest(r io.Reader) (*ManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("listview: manifest is empty")
		}
		return nil, fmt.Errorf("listview: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("listview: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Lists))
	for idx, list := range doc.Lists {
		code := list.Definition.Code
		if code == "" {
			return fmt.Errorf("listview: manifest list at index %d is missing definition.code", idx)
		}
		if list.Definition.Name == "" {
			return fmt.Errorf("listview: manifest list %s missing definition.name", code)
		}
		if _, exists := seen[code]; exists {
			return fmt.Errorf("listview: manifest duplicates list code %s", code)
		}
		seen[code] = struct{}{}
		if err := list.Definition.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EncodeManifest writes a manifest as YAML.
func EncodeManifest(w io.Writer, doc ManifestDocument) error {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
