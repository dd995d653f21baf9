package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// SetSortInput selects a declared sort key; an empty key restores insertion order.
type SetSortInput struct {
	Viewer   listview.ViewerContext `json:"-"`
	ListCode string                 `json:"list_code"`
	SortKey  string                 `json:"sort"`
}

type sortService interface {
	SetSort(ctx context.Context, viewer listview.ViewerContext, code, sortKey string) (listview.View, error)
}

// SetSortCommand reorders the viewer's list.
type SetSortCommand struct {
	service   sortService
	telemetry Telemetry
}

// NewSetSortCommand creates the command.
func NewSetSortCommand(service sortService, telemetry Telemetry) *SetSortCommand {
	return &SetSortCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetSortInput] = (*SetSortCommand)(nil)

// Execute delegates to the list service.
func (c *SetSortCommand) Execute(ctx context.Context, msg SetSortInput) error {
	if c.service == nil {
		return errors.New("sort command requires service")
	}
	if _, err := c.service.SetSort(ctx, msg.Viewer, msg.ListCode, msg.SortKey); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listview.command.sort", map[string]any{
		"list_code": msg.ListCode,
		"sort":      msg.SortKey,
	})
	return nil
}
