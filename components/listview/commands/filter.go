package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// SetFilterInput applies one filter, or clears every filter when Clear is set.
type SetFilterInput struct {
	Viewer   listview.ViewerContext `json:"-"`
	ListCode string                 `json:"list_code"`
	Field    string                 `json:"field"`
	Value    string                 `json:"value"`
	Clear    bool                   `json:"clear,omitempty"`
}

type filterService interface {
	SetFilter(ctx context.Context, viewer listview.ViewerContext, code, field, value string) (listview.View, error)
	ClearFilters(ctx context.Context, viewer listview.ViewerContext, code string) (listview.View, error)
}

// SetFilterCommand narrows the viewer's list.
type SetFilterCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewSetFilterCommand creates the command.
func NewSetFilterCommand(service filterService, telemetry Telemetry) *SetFilterCommand {
	return &SetFilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetFilterInput] = (*SetFilterCommand)(nil)

// Execute delegates to the list service.
func (c *SetFilterCommand) Execute(ctx context.Context, msg SetFilterInput) error {
	if c.service == nil {
		return errors.New("filter command requires service")
	}
	if msg.Clear {
		if _, err := c.service.ClearFilters(ctx, msg.Viewer, msg.ListCode); err != nil {
			return err
		}
		c.telemetry.Record(ctx, "listview.command.filter.clear", map[string]any{
			"list_code": msg.ListCode,
		})
		return nil
	}
	if _, err := c.service.SetFilter(ctx, msg.Viewer, msg.ListCode, msg.Field, msg.Value); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listview.command.filter", map[string]any{
		"list_code": msg.ListCode,
		"field":     msg.Field,
	})
	return nil
}
