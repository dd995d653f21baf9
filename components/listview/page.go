package listview

import (
	"context"
	"io"
)

// Renderer describes the template renderer contract needed by PageController.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// PageColumn is a rendered table header.
type PageColumn struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// PageRow is a rendered table row.
type PageRow struct {
	ID       string   `json:"id"`
	Cells    []string `json:"cells"`
	Selected bool     `json:"selected"`
}

// PageFilter describes one filter control.
type PageFilter struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Search  bool     `json:"search"`
	Options []string `json:"options,omitempty"`
	Value   string   `json:"value"`
}

// PageOperation describes one bulk action button.
type PageOperation struct {
	Code         string `json:"code"`
	Label        string `json:"label"`
	Confirm      bool   `json:"confirm"`
	RequiresData bool   `json:"requires_data"`
	Destructive  bool   `json:"destructive"`
}

// Page is the presentation model handed to templates.
type Page struct {
	Code          string          `json:"code"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Locale        string          `json:"locale"`
	Columns       []PageColumn    `json:"columns"`
	Rows          []PageRow       `json:"rows"`
	Filters       []PageFilter    `json:"filters"`
	SortKeys      []SortKey       `json:"sort_keys"`
	Sort          string          `json:"sort"`
	Operations    []PageOperation `json:"operations"`
	Cards         []StatCard      `json:"cards"`
	SelectedCount int             `json:"selected_count"`
	AllSelected   bool            `json:"all_selected"`
	VisibleCount  int             `json:"visible_count"`
	TotalCount    int             `json:"total_count"`
	ChartHTML     string          `json:"chart_html,omitempty"`
}

// Page builds the presentation model for the viewer's list.
func (s *Service) Page(ctx context.Context, viewer ViewerContext, code string) (Page, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return Page{}, err
	}
	def := ctrl.Definition()
	view := ctrl.View()
	records := ctrl.Records()
	locale := viewer.Locale
	tr := s.opts.Translator

	page := Page{
		Code:          def.Code,
		Title:         translateOrFallback(ctx, tr, "listview."+def.Code+".title", locale, def.NameForLocale(locale), nil),
		Description:   def.DescriptionForLocale(locale),
		Locale:        locale,
		SortKeys:      def.SortKeys,
		Sort:          view.Sort,
		SelectedCount: len(view.Selected),
		AllSelected:   view.AllSelected,
		VisibleCount:  view.VisibleCount,
		TotalCount:    view.TotalCount,
	}
	page.Cards = Cards(ctx, def, view.Stats, CardOptions{Locale: locale, Translator: tr, Currency: s.opts.Currency})

	columns := def.Schema.Columns()
	for _, name := range columns {
		field, _ := def.Schema.Field(name)
		page.Columns = append(page.Columns, PageColumn{Name: name, Label: field.LabelForLocale(locale)})
	}
	selected := make(map[string]struct{}, len(view.Selected))
	for _, id := range view.Selected {
		selected[id] = struct{}{}
	}
	for _, rec := range view.Items {
		row := PageRow{ID: rec.ID, Cells: make([]string, len(columns))}
		for i, name := range columns {
			row.Cells[i] = rec.String(name)
		}
		_, row.Selected = selected[rec.ID]
		page.Rows = append(page.Rows, row)
	}
	for _, name := range FilterFields(def.Schema) {
		field, _ := def.Schema.Field(name)
		filter := PageFilter{
			Field:  name,
			Label:  field.LabelForLocale(locale),
			Search: len(field.SearchFields) > 0,
			Value:  view.Filters[name],
		}
		if !filter.Search && field.Kind != KindText {
			filter.Options = FacetValues(def.Schema, records, name)
		}
		page.Filters = append(page.Filters, filter)
	}
	for _, op := range def.Operations {
		label := op.Label
		if label == "" {
			label = op.Code
		}
		page.Operations = append(page.Operations, PageOperation{
			Code:         op.Code,
			Label:        translateOrFallback(ctx, tr, "listview.operations."+op.Code, locale, label, nil),
			Confirm:      op.RequiresConfirmation(),
			RequiresData: op.RequiresData(),
			Destructive:  op.Destructive,
		})
	}
	if def.Stats.StatusField != "" && len(view.Stats.ByStatus) > 0 {
		if html, err := s.Chart(ctx, viewer, code, "bar"); err == nil {
			page.ChartHTML = html
		}
	}
	return page, nil
}

// PageController renders list pages for HTML transports.
type PageController struct {
	service  *Service
	renderer Renderer
}

// NewPageController wires the service and renderer into a controller.
func NewPageController(service *Service, renderer Renderer) *PageController {
	return &PageController{service: service, renderer: renderer}
}

// Render builds the page and writes the "list" template.
func (c *PageController) Render(ctx context.Context, viewer ViewerContext, code string, out ...io.Writer) (string, error) {
	page, err := c.service.Page(ctx, viewer, code)
	if err != nil {
		return "", err
	}
	if c.renderer == nil {
		return "", nil
	}
	return c.renderer.Render("list", map[string]any{"page": page, "viewer": viewer}, out...)
}
