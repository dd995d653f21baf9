package listview

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ControllerFactory builds the controller for a definition when it is mounted.
type ControllerFactory func(def Definition) *Controller

// Mount is one live controller bound to a viewer and list.
type Mount struct {
	Viewer     ViewerContext
	Code       string
	Controller *Controller
	MountedAt  time.Time
}

// MountStore keeps one controller per viewer/list pair. State lives only as
// long as the mount: Unmount drops it, and nothing is persisted.
type MountStore struct {
	registry DefinitionRegistry
	factory  ControllerFactory

	mu      sync.RWMutex
	entries map[string]*Mount
}

// NewMountStore creates a store resolving definitions and sources from registry.
func NewMountStore(registry DefinitionRegistry, factory ControllerFactory) *MountStore {
	if factory == nil {
		factory = func(def Definition) *Controller { return NewController(def) }
	}
	return &MountStore{
		registry: registry,
		factory:  factory,
		entries:  map[string]*Mount{},
	}
}

// Mount returns the viewer's controller for code, creating and loading it on
// first use. created reports whether a new controller was built.
func (s *MountStore) Mount(ctx context.Context, viewer ViewerContext, code string) (ctrl *Controller, created bool, err error) {
	if viewer.UserID == "" {
		return nil, false, ErrMissingViewer
	}
	key := s.key(viewer, code)
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return entry.Controller, false, nil
	}
	def, ok := s.registry.Definition(code)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownList, code)
	}
	ctrl = s.factory(def)
	if src, ok := s.registry.Source(code); ok {
		records, err := src.Records(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("listview: load %s: %w", code, err)
		}
		if err := ctrl.Load(records); err != nil {
			return nil, false, fmt.Errorf("listview: load %s: %w", code, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		return existing.Controller, false, nil
	}
	s.entries[key] = &Mount{
		Viewer:     viewer,
		Code:       code,
		Controller: ctrl,
		MountedAt:  time.Now(),
	}
	return ctrl, true, nil
}

// Get returns an existing mount without creating one.
func (s *MountStore) Get(viewer ViewerContext, code string) (*Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[s.key(viewer, code)]
	if !ok {
		return nil, false
	}
	return entry.Controller, true
}

// Unmount drops the viewer's controller for code.
func (s *MountStore) Unmount(viewer ViewerContext, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(viewer, code)
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// UnmountViewer drops every mount owned by the viewer (e.g. on logout) and
// returns how many were removed.
func (s *MountStore) UnmountViewer(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if entry.Viewer.UserID == userID {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Mounts lists the live mounts.
func (s *MountStore) Mounts() []Mount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Mount, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, *entry)
	}
	return out
}

// key ignores the locale: one user sees the same state in every language.
func (s *MountStore) key(viewer ViewerContext, code string) string {
	return viewer.UserID + "::" + code
}
