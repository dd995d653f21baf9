package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// BulkStatusInput identifies a parked bulk request.
type BulkStatusInput struct {
	Viewer    listview.ViewerContext
	ListCode  string
	RequestID string
}

type bulkStatusService interface {
	BulkStatus(ctx context.Context, viewer listview.ViewerContext, code, requestID string) (listview.BulkRequest, error)
}

// BulkStatusQuery reports a request awaiting confirmation.
type BulkStatusQuery struct {
	service bulkStatusService
}

// NewBulkStatusQuery builds the query.
func NewBulkStatusQuery(service bulkStatusService) *BulkStatusQuery {
	return &BulkStatusQuery{service: service}
}

var _ gocommand.Querier[BulkStatusInput, listview.BulkRequest] = (*BulkStatusQuery)(nil)

// Query returns the parked request.
func (q *BulkStatusQuery) Query(ctx context.Context, input BulkStatusInput) (listview.BulkRequest, error) {
	return q.service.BulkStatus(ctx, input.Viewer, input.ListCode, input.RequestID)
}
