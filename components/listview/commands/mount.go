package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// MountInput loads a list for a viewer.
type MountInput struct {
	Viewer   listview.ViewerContext `json:"-"`
	ListCode string                 `json:"list_code"`
}

// UnmountInput drops a viewer's list state. All drops every list the viewer
// has mounted, e.g. on logout.
type UnmountInput struct {
	Viewer   listview.ViewerContext `json:"-"`
	ListCode string                 `json:"list_code,omitempty"`
	All      bool                   `json:"all,omitempty"`
}

type mountService interface {
	Mount(ctx context.Context, viewer listview.ViewerContext, code string) (listview.View, error)
	Unmount(ctx context.Context, viewer listview.ViewerContext, code string) error
	UnmountViewer(ctx context.Context, userID string) int
}

// MountCommand loads the list's records into a fresh controller.
type MountCommand struct {
	service   mountService
	telemetry Telemetry
}

// NewMountCommand creates the command.
func NewMountCommand(service mountService, telemetry Telemetry) *MountCommand {
	return &MountCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MountInput] = (*MountCommand)(nil)

// Execute delegates to the list service.
func (c *MountCommand) Execute(ctx context.Context, msg MountInput) error {
	if c.service == nil {
		return errors.New("mount command requires service")
	}
	view, err := c.service.Mount(ctx, msg.Viewer, msg.ListCode)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listview.command.mount", map[string]any{
		"list_code": msg.ListCode,
		"records":   view.TotalCount,
	})
	return nil
}

// UnmountCommand drops list state.
type UnmountCommand struct {
	service   mountService
	telemetry Telemetry
}

// NewUnmountCommand creates the command.
func NewUnmountCommand(service mountService, telemetry Telemetry) *UnmountCommand {
	return &UnmountCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UnmountInput] = (*UnmountCommand)(nil)

// Execute delegates to the list service.
func (c *UnmountCommand) Execute(ctx context.Context, msg UnmountInput) error {
	if c.service == nil {
		return errors.New("unmount command requires service")
	}
	if msg.All {
		removed := c.service.UnmountViewer(ctx, msg.Viewer.UserID)
		c.telemetry.Record(ctx, "listview.command.unmount", map[string]any{
			"viewer":  msg.Viewer.UserID,
			"removed": removed,
		})
		return nil
	}
	if err := c.service.Unmount(ctx, msg.Viewer, msg.ListCode); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listview.command.unmount", map[string]any{
		"viewer":    msg.Viewer.UserID,
		"list_code": msg.ListCode,
	})
	return nil
}
