package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// LoadManifestInput points at a YAML manifest of extra list definitions.
type LoadManifestInput struct {
	Path string `json:"path"`
}

type manifestLoader interface {
	LoadManifestFile(path string) (*listview.ManifestDocument, error)
}

// LoadManifestCommand registers manifest lists at bootstrap.
type LoadManifestCommand struct {
	registry  manifestLoader
	telemetry Telemetry
}

// NewLoadManifestCommand wires dependencies.
func NewLoadManifestCommand(registry manifestLoader, telemetry Telemetry) *LoadManifestCommand {
	return &LoadManifestCommand{registry: registry, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LoadManifestInput] = (*LoadManifestCommand)(nil)

// Execute loads and registers the manifest.
func (c *LoadManifestCommand) Execute(ctx context.Context, msg LoadManifestInput) error {
	if c.registry == nil {
		return errors.New("manifest command requires registry")
	}
	if msg.Path == "" {
		return errors.New("manifest command requires a path")
	}
	doc, err := c.registry.LoadManifestFile(msg.Path)
	if err != nil {
		return err
	}
	codes := make([]string, 0, len(doc.Lists))
	for _, list := range doc.Lists {
		codes = append(codes, list.Definition.Code)
	}
	c.telemetry.Record(ctx, "listview.manifest.load", map[string]any{
		"path":  msg.Path,
		"lists": codes,
	})
	return nil
}
