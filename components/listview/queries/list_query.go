package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-listview/components/listview"
)

// ListInput identifies a list for a viewer.
type ListInput struct {
	Viewer   listview.ViewerContext
	ListCode string
}

type viewService interface {
	View(ctx context.Context, viewer listview.ViewerContext, code string) (listview.View, error)
}

// ViewQuery resolves the derived view of a viewer's list.
type ViewQuery struct {
	service viewService
}

// NewViewQuery builds the query.
func NewViewQuery(service viewService) *ViewQuery {
	return &ViewQuery{service: service}
}

var _ gocommand.Querier[ListInput, listview.View] = (*ViewQuery)(nil)

// Query mounts the list on first use and returns its view.
func (q *ViewQuery) Query(ctx context.Context, input ListInput) (listview.View, error) {
	return q.service.View(ctx, input.Viewer, input.ListCode)
}

type pageService interface {
	Page(ctx context.Context, viewer listview.ViewerContext, code string) (listview.Page, error)
}

// PageQuery builds the presentation model for templates and JSON clients.
type PageQuery struct {
	service pageService
}

// NewPageQuery builds the query.
func NewPageQuery(service pageService) *PageQuery {
	return &PageQuery{service: service}
}

var _ gocommand.Querier[ListInput, listview.Page] = (*PageQuery)(nil)

// Query returns the page model.
func (q *PageQuery) Query(ctx context.Context, input ListInput) (listview.Page, error) {
	return q.service.Page(ctx, input.Viewer, input.ListCode)
}

type definitionsService interface {
	Definitions() []listview.Definition
}

// DefinitionSummary is the navigation entry for one registered list.
type DefinitionSummary struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DefinitionsQuery lists the registered lists in the viewer's locale.
type DefinitionsQuery struct {
	service definitionsService
}

// NewDefinitionsQuery builds the query.
func NewDefinitionsQuery(service definitionsService) *DefinitionsQuery {
	return &DefinitionsQuery{service: service}
}

var _ gocommand.Querier[listview.ViewerContext, []DefinitionSummary] = (*DefinitionsQuery)(nil)

// Query returns one summary per definition, ordered by code.
func (q *DefinitionsQuery) Query(_ context.Context, viewer listview.ViewerContext) ([]DefinitionSummary, error) {
	defs := q.service.Definitions()
	out := make([]DefinitionSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, DefinitionSummary{
			Code:        def.Code,
			Name:        def.NameForLocale(viewer.Locale),
			Description: def.DescriptionForLocale(viewer.Locale),
		})
	}
	return out, nil
}
