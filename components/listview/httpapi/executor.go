package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
	"github.com/goliatone/go-listview/components/listview/commands"
	"github.com/goliatone/go-listview/components/listview/queries"
)

// Executor is the transport-facing surface shared by the net/http handlers
// and the go-router registration. Mutations return the recomputed view.
type Executor interface {
	View(ctx context.Context, input queries.ListInput) (listview.View, error)
	Page(ctx context.Context, input queries.ListInput) (listview.Page, error)
	Stats(ctx context.Context, input queries.ListInput) (queries.StatsResult, error)
	SetFilter(ctx context.Context, input commands.SetFilterInput) (listview.View, error)
	SetSort(ctx context.Context, input commands.SetSortInput) (listview.View, error)
	Select(ctx context.Context, input commands.SelectInput) (listview.View, error)
	RequestBulk(ctx context.Context, input commands.RequestBulkInput) (listview.BulkRequest, error)
	ConfirmBulk(ctx context.Context, input commands.ConfirmBulkInput) (listview.BulkResult, error)
	CancelBulk(ctx context.Context, input commands.CancelBulkInput) (listview.BulkRequest, error)
	BulkStatus(ctx context.Context, input queries.BulkStatusInput) (listview.BulkRequest, error)
	Export(ctx context.Context, input commands.ExportListInput) (listview.Report, error)
	Unmount(ctx context.Context, input commands.UnmountInput) error
}

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	FilterCommander      gocommand.Commander[commands.SetFilterInput]
	SortCommander        gocommand.Commander[commands.SetSortInput]
	SelectCommander      gocommand.Commander[commands.SelectInput]
	RequestBulkCommander gocommand.Commander[commands.RequestBulkInput]
	ConfirmBulkCommander gocommand.Commander[commands.ConfirmBulkInput]
	CancelBulkCommander  gocommand.Commander[commands.CancelBulkInput]
	ExportCommander      gocommand.Commander[commands.ExportListInput]
	UnmountCommander     gocommand.Commander[commands.UnmountInput]
	ViewQuerier          gocommand.Querier[queries.ListInput, listview.View]
	PageQuerier          gocommand.Querier[queries.ListInput, listview.Page]
	StatsQuerier         gocommand.Querier[queries.ListInput, queries.StatsResult]
	BulkStatusQuerier    gocommand.Querier[queries.BulkStatusInput, listview.BulkRequest]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: executor not configured")

// NewServiceExecutor wires every command and query against one service.
func NewServiceExecutor(service *listview.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		FilterCommander:      commands.NewSetFilterCommand(service, telemetry),
		SortCommander:        commands.NewSetSortCommand(service, telemetry),
		SelectCommander:      commands.NewSelectCommand(service, telemetry),
		RequestBulkCommander: commands.NewRequestBulkCommand(service, telemetry),
		ConfirmBulkCommander: commands.NewConfirmBulkCommand(service, telemetry),
		CancelBulkCommander:  commands.NewCancelBulkCommand(service, telemetry),
		ExportCommander:      commands.NewExportListCommand(service, telemetry),
		UnmountCommander:     commands.NewUnmountCommand(service, telemetry),
		ViewQuerier:          queries.NewViewQuery(service),
		PageQuerier:          queries.NewPageQuery(service),
		StatsQuerier:         queries.NewStatsQuery(service),
		BulkStatusQuerier:    queries.NewBulkStatusQuery(service),
	}
}

func (e *CommandExecutor) View(ctx context.Context, input queries.ListInput) (listview.View, error) {
	if e.ViewQuerier == nil {
		return listview.View{}, errNotConfigured
	}
	return e.ViewQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Page(ctx context.Context, input queries.ListInput) (listview.Page, error) {
	if e.PageQuerier == nil {
		return listview.Page{}, errNotConfigured
	}
	return e.PageQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Stats(ctx context.Context, input queries.ListInput) (queries.StatsResult, error) {
	if e.StatsQuerier == nil {
		return queries.StatsResult{}, errNotConfigured
	}
	return e.StatsQuerier.Query(ctx, input)
}

func (e *CommandExecutor) SetFilter(ctx context.Context, input commands.SetFilterInput) (listview.View, error) {
	if e.FilterCommander == nil {
		return listview.View{}, errNotConfigured
	}
	if err := e.FilterCommander.Execute(ctx, input); err != nil {
		return listview.View{}, err
	}
	return e.View(ctx, queries.ListInput{Viewer: input.Viewer, ListCode: input.ListCode})
}

func (e *CommandExecutor) SetSort(ctx context.Context, input commands.SetSortInput) (listview.View, error) {
	if e.SortCommander == nil {
		return listview.View{}, errNotConfigured
	}
	if err := e.SortCommander.Execute(ctx, input); err != nil {
		return listview.View{}, err
	}
	return e.View(ctx, queries.ListInput{Viewer: input.Viewer, ListCode: input.ListCode})
}

func (e *CommandExecutor) Select(ctx context.Context, input commands.SelectInput) (listview.View, error) {
	if e.SelectCommander == nil {
		return listview.View{}, errNotConfigured
	}
	if err := e.SelectCommander.Execute(ctx, input); err != nil {
		return listview.View{}, err
	}
	return e.View(ctx, queries.ListInput{Viewer: input.Viewer, ListCode: input.ListCode})
}

func (e *CommandExecutor) RequestBulk(ctx context.Context, input commands.RequestBulkInput) (listview.BulkRequest, error) {
	if e.RequestBulkCommander == nil {
		return listview.BulkRequest{}, errNotConfigured
	}
	var req listview.BulkRequest
	input.Result = &req
	if err := e.RequestBulkCommander.Execute(ctx, input); err != nil {
		return listview.BulkRequest{}, err
	}
	return req, nil
}

func (e *CommandExecutor) ConfirmBulk(ctx context.Context, input commands.ConfirmBulkInput) (listview.BulkResult, error) {
	if e.ConfirmBulkCommander == nil {
		return listview.BulkResult{}, errNotConfigured
	}
	var result listview.BulkResult
	input.Result = &result
	if err := e.ConfirmBulkCommander.Execute(ctx, input); err != nil {
		return listview.BulkResult{}, err
	}
	return result, nil
}

func (e *CommandExecutor) CancelBulk(ctx context.Context, input commands.CancelBulkInput) (listview.BulkRequest, error) {
	if e.CancelBulkCommander == nil {
		return listview.BulkRequest{}, errNotConfigured
	}
	var req listview.BulkRequest
	input.Result = &req
	if err := e.CancelBulkCommander.Execute(ctx, input); err != nil {
		return listview.BulkRequest{}, err
	}
	return req, nil
}

func (e *CommandExecutor) BulkStatus(ctx context.Context, input queries.BulkStatusInput) (listview.BulkRequest, error) {
	if e.BulkStatusQuerier == nil {
		return listview.BulkRequest{}, errNotConfigured
	}
	return e.BulkStatusQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Export(ctx context.Context, input commands.ExportListInput) (listview.Report, error) {
	if e.ExportCommander == nil {
		return listview.Report{}, errNotConfigured
	}
	var report listview.Report
	input.Result = &report
	if err := e.ExportCommander.Execute(ctx, input); err != nil {
		return listview.Report{}, err
	}
	return report, nil
}

func (e *CommandExecutor) Unmount(ctx context.Context, input commands.UnmountInput) error {
	if e.UnmountCommander == nil {
		return errNotConfigured
	}
	return e.UnmountCommander.Execute(ctx, input)
}
