// Package listview re-exports the list controller types for hosts that do
// not want to import the components tree directly.
package listview

import (
	core "github.com/goliatone/go-listview/components/listview"
)

// Service exposes the underlying components/listview.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext identifies the user a list is mounted for.
type ViewerContext = core.ViewerContext

type (
	Record     = core.Record
	Definition = core.Definition
	View       = core.View
	Registry   = core.Registry
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewRegistry returns a registry seeded with the built-in lists.
func NewRegistry() *Registry {
	return core.NewRegistry()
}

// DefaultDefinitions lists the built-in marketplace lists.
func DefaultDefinitions() []Definition {
	return core.DefaultDefinitions()
}
