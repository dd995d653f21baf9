package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// RequestBulkInput starts a bulk operation on the current selection. When
// Result is set the command writes the request back into it.
type RequestBulkInput struct {
	Viewer    listview.ViewerContext `json:"-"`
	ListCode  string                 `json:"list_code"`
	Operation string                 `json:"operation"`
	Data      map[string]any         `json:"data,omitempty"`
	Result    *listview.BulkRequest  `json:"-"`
}

// ConfirmBulkInput applies a request parked awaiting confirmation.
type ConfirmBulkInput struct {
	Viewer    listview.ViewerContext `json:"-"`
	ListCode  string                 `json:"list_code"`
	RequestID string                 `json:"request_id"`
	Result    *listview.BulkResult   `json:"-"`
}

// CancelBulkInput drops a parked request.
type CancelBulkInput struct {
	Viewer    listview.ViewerContext `json:"-"`
	ListCode  string                 `json:"list_code"`
	RequestID string                 `json:"request_id"`
	Result    *listview.BulkRequest  `json:"-"`
}

type bulkService interface {
	RequestBulk(ctx context.Context, viewer listview.ViewerContext, code, operation string, data map[string]any) (listview.BulkRequest, error)
	ConfirmBulk(ctx context.Context, viewer listview.ViewerContext, code, requestID string) (listview.BulkResult, error)
	CancelBulk(ctx context.Context, viewer listview.ViewerContext, code, requestID string) (listview.BulkRequest, error)
}

// RequestBulkCommand validates and, when no confirmation is needed, applies a
// bulk operation.
type RequestBulkCommand struct {
	service   bulkService
	telemetry Telemetry
}

// NewRequestBulkCommand creates the command.
func NewRequestBulkCommand(service bulkService, telemetry Telemetry) *RequestBulkCommand {
	return &RequestBulkCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RequestBulkInput] = (*RequestBulkCommand)(nil)

// Execute delegates to the list service.
func (c *RequestBulkCommand) Execute(ctx context.Context, msg RequestBulkInput) error {
	if c.service == nil {
		return errors.New("bulk request command requires service")
	}
	req, err := c.service.RequestBulk(ctx, msg.Viewer, msg.ListCode, msg.Operation, msg.Data)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = req
	}
	c.telemetry.Record(ctx, "listview.command.bulk.request", map[string]any{
		"list_code":  msg.ListCode,
		"operation":  msg.Operation,
		"request_id": req.ID,
		"state":      string(req.State),
	})
	return nil
}

// ConfirmBulkCommand applies a confirmed request.
type ConfirmBulkCommand struct {
	service   bulkService
	telemetry Telemetry
}

// NewConfirmBulkCommand creates the command.
func NewConfirmBulkCommand(service bulkService, telemetry Telemetry) *ConfirmBulkCommand {
	return &ConfirmBulkCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ConfirmBulkInput] = (*ConfirmBulkCommand)(nil)

// Execute delegates to the list service.
func (c *ConfirmBulkCommand) Execute(ctx context.Context, msg ConfirmBulkInput) error {
	if c.service == nil {
		return errors.New("bulk confirm command requires service")
	}
	if msg.RequestID == "" {
		return errors.New("bulk confirm requires a request id")
	}
	result, err := c.service.ConfirmBulk(ctx, msg.Viewer, msg.ListCode, msg.RequestID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.Record(ctx, "listview.command.bulk.confirm", map[string]any{
		"list_code":  msg.ListCode,
		"request_id": msg.RequestID,
		"affected":   result.Affected,
	})
	return nil
}

// CancelBulkCommand cancels a parked request.
type CancelBulkCommand struct {
	service   bulkService
	telemetry Telemetry
}

// NewCancelBulkCommand creates the command.
func NewCancelBulkCommand(service bulkService, telemetry Telemetry) *CancelBulkCommand {
	return &CancelBulkCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CancelBulkInput] = (*CancelBulkCommand)(nil)

// Execute delegates to the list service.
func (c *CancelBulkCommand) Execute(ctx context.Context, msg CancelBulkInput) error {
	if c.service == nil {
		return errors.New("bulk cancel command requires service")
	}
	req, err := c.service.CancelBulk(ctx, msg.Viewer, msg.ListCode, msg.RequestID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = req
	}
	c.telemetry.Record(ctx, "listview.command.bulk.cancel", map[string]any{
		"list_code":  msg.ListCode,
		"request_id": msg.RequestID,
	})
	return nil
}
