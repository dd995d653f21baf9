package listview

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// RegistryHook lets packages register lists during init().
type RegistryHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []RegistryHook
)

// RegisterListHook registers a hook executed against new registries.
func RegisterListHook(h RegistryHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements DefinitionRegistry with hook and manifest support.
type Registry struct {
	mu            sync.RWMutex
	definitions   map[string]Definition
	sources       map[string]Source
	manifests     map[string]string
	sourceFactory SourceFactory
}

// NewRegistry builds a registry seeded with the default lists and applies global hooks.
func NewRegistry() *Registry {
	reg := newEmptyRegistry()
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func newEmptyRegistry() *Registry {
	return &Registry{
		definitions: map[string]Definition{},
		sources:     map[string]Source{},
		manifests:   map[string]string{},
	}
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultDefinitions() {
		_ = r.RegisterDefinition(def)
		if records, ok := defaultRecords[def.Code]; ok {
			_ = r.RegisterSource(def.Code, StaticSource(records()))
		}
	}
}

// ApplyHooks executes registered list hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition validates and stores a list definition.
func (r *Registry) RegisterDefinition(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	def.normalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterSource associates a record source with a definition.
func (r *Registry) RegisterSource(code string, source Source) error {
	if code == "" {
		return fmt.Errorf("listview: definition code is required to register source")
	}
	if source == nil {
		return fmt.Errorf("listview: source cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownList, code)
	}
	r.sources[code] = source
	return nil
}

// Definition fetches a definition by code.
func (r *Registry) Definition(code string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Source fetches the record source for a definition.
func (r *Registry) Source(code string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[code]
	return src, ok
}

// ManifestSource returns the manifest path a definition was loaded from.
func (r *Registry) ManifestSource(code string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.manifests[code]
	return path, ok
}

// Definitions returns every definition sorted by code.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// StaticSource serves a fixed set of records; each call returns a copy.
func StaticSource(records []Record) Source {
	snapshot := cloneRecords(records)
	return SourceFunc(func(context.Context) ([]Record, error) {
		return cloneRecords(snapshot), nil
	})
}

var _ DefinitionRegistry = (*Registry)(nil)
