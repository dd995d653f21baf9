package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// ExportListInput exports every visible record of the viewer's list.
type ExportListInput struct {
	Viewer   listview.ViewerContext `json:"-"`
	ListCode string                 `json:"list_code"`
	Format   string                 `json:"format,omitempty"`
	Result   *listview.Report       `json:"-"`
}

type exportService interface {
	ExportVisible(ctx context.Context, viewer listview.ViewerContext, code, format string) (listview.Report, error)
}

// ExportListCommand hands a report of the visible records to the exporter.
type ExportListCommand struct {
	service   exportService
	telemetry Telemetry
}

// NewExportListCommand creates the command.
func NewExportListCommand(service exportService, telemetry Telemetry) *ExportListCommand {
	return &ExportListCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ExportListInput] = (*ExportListCommand)(nil)

// Execute delegates to the list service.
func (c *ExportListCommand) Execute(ctx context.Context, msg ExportListInput) error {
	if c.service == nil {
		return errors.New("export command requires service")
	}
	report, err := c.service.ExportVisible(ctx, msg.Viewer, msg.ListCode, msg.Format)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = report
	}
	c.telemetry.Record(ctx, "listview.command.export", map[string]any{
		"list_code": msg.ListCode,
		"filename":  report.Filename(),
	})
	return nil
}
