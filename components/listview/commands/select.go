package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// SelectMode picks how a SelectInput changes the selection.
type SelectMode string

const (
	SelectToggle SelectMode = "toggle"
	SelectOnly   SelectMode = "only"
	SelectAll    SelectMode = "all"
	SelectClear  SelectMode = "clear"
)

// SelectInput changes the viewer's selection. RecordID is required for toggle
// and only.
type SelectInput struct {
	Viewer   listview.ViewerContext `json:"-"`
	ListCode string                 `json:"list_code"`
	Mode     SelectMode             `json:"mode"`
	RecordID string                 `json:"id,omitempty"`
}

type selectService interface {
	ToggleSelect(ctx context.Context, viewer listview.ViewerContext, code, id string) (listview.View, error)
	SelectOnly(ctx context.Context, viewer listview.ViewerContext, code, id string) (listview.View, error)
	SelectAll(ctx context.Context, viewer listview.ViewerContext, code string) (listview.View, error)
	ClearSelection(ctx context.Context, viewer listview.ViewerContext, code string) (listview.View, error)
}

// SelectCommand routes selection intents to the service.
type SelectCommand struct {
	service   selectService
	telemetry Telemetry
}

// NewSelectCommand creates the command.
func NewSelectCommand(service selectService, telemetry Telemetry) *SelectCommand {
	return &SelectCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectInput] = (*SelectCommand)(nil)

// Execute delegates to the list service.
func (c *SelectCommand) Execute(ctx context.Context, msg SelectInput) error {
	if c.service == nil {
		return errors.New("select command requires service")
	}
	mode := msg.Mode
	if mode == "" {
		mode = SelectToggle
	}
	var err error
	switch mode {
	case SelectToggle, SelectOnly:
		if msg.RecordID == "" {
			return fmt.Errorf("select %s requires a record id", mode)
		}
		if mode == SelectToggle {
			_, err = c.service.ToggleSelect(ctx, msg.Viewer, msg.ListCode, msg.RecordID)
		} else {
			_, err = c.service.SelectOnly(ctx, msg.Viewer, msg.ListCode, msg.RecordID)
		}
	case SelectAll:
		_, err = c.service.SelectAll(ctx, msg.Viewer, msg.ListCode)
	case SelectClear:
		_, err = c.service.ClearSelection(ctx, msg.Viewer, msg.ListCode)
	default:
		return fmt.Errorf("unknown select mode %q", mode)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listview.command.select", map[string]any{
		"list_code": msg.ListCode,
		"mode":      string(mode),
		"record_id": msg.RecordID,
	})
	return nil
}
