package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// StatsResult pairs the aggregates with their rendered cards.
type StatsResult struct {
	Stats listview.Stats      `json:"stats"`
	Cards []listview.StatCard `json:"cards"`
}

type statsService interface {
	Stats(ctx context.Context, viewer listview.ViewerContext, code string) (listview.Stats, []listview.StatCard, error)
}

// StatsQuery resolves the summary cards of a list.
type StatsQuery struct {
	service statsService
}

// NewStatsQuery builds the query.
func NewStatsQuery(service statsService) *StatsQuery {
	return &StatsQuery{service: service}
}

var _ gocommand.Querier[ListInput, StatsResult] = (*StatsQuery)(nil)

// Query returns stats over the whole collection.
func (q *StatsQuery) Query(ctx context.Context, input ListInput) (StatsResult, error) {
	stats, cards, err := q.service.Stats(ctx, input.Viewer, input.ListCode)
	if err != nil {
		return StatsResult{}, err
	}
	return StatsResult{Stats: stats, Cards: cards}, nil
}
