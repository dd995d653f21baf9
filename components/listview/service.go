package listview

import (
	"context"
	"time"

	"github.com/goliatone/go-listview/pkg/activity"
)

// SchemaValidator validates both records and bulk data.
type SchemaValidator interface {
	RecordValidator
	DataValidator
}

// Options configures the Service. Every collaborator is an interface so hosts
// can swap implementations.
type Options struct {
	Registry        DefinitionRegistry
	Exporter        Exporter
	EmailDispatcher EmailDispatcher
	Notifier        Notifier
	Validator       SchemaValidator
	Telemetry       Telemetry
	Translator      TranslationService
	ChartCache      RenderCache
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	Currency        string
	Clock           func() time.Time
}

// Service manages mounted list controllers on behalf of transports and reports
// their side effects to notifiers, telemetry, and activity hooks.
type Service struct {
	opts     Options
	mounts   *MountStore
	activity *activity.Emitter
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = noopTelemetry{}
	}
	if opts.ChartCache == nil {
		opts.ChartCache = NewChartCache(5 * time.Minute)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
	s.mounts = NewMountStore(opts.Registry, s.newController)
	return s
}

func (s *Service) newController(def Definition) *Controller {
	return NewController(def,
		WithExporter(s.opts.Exporter),
		WithEmailDispatcher(s.opts.EmailDispatcher),
		WithRecordValidator(s.opts.Validator),
		WithDataValidator(s.opts.Validator),
		WithClock(s.opts.Clock),
	)
}

// Registry exposes the definition registry.
func (s *Service) Registry() DefinitionRegistry {
	return s.opts.Registry
}

// Definitions lists the registered lists.
func (s *Service) Definitions() []Definition {
	return s.opts.Registry.Definitions()
}

// Mount loads the list for the viewer and returns its initial view.
func (s *Service) Mount(ctx context.Context, viewer ViewerContext, code string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	return ctrl.View(), nil
}

// Unmount drops the viewer's state for the list.
func (s *Service) Unmount(ctx context.Context, viewer ViewerContext, code string) error {
	if !s.mounts.Unmount(viewer, code) {
		return ErrNotMounted
	}
	s.recordTelemetry(ctx, "listview.unmount", map[string]any{
		"viewer":    viewer.UserID,
		"list_code": code,
	})
	return nil
}

// UnmountViewer drops every list mounted by a user.
func (s *Service) UnmountViewer(ctx context.Context, userID string) int {
	removed := s.mounts.UnmountViewer(userID)
	if removed > 0 {
		s.recordTelemetry(ctx, "listview.unmount_viewer", map[string]any{
			"viewer":  userID,
			"removed": removed,
		})
	}
	return removed
}

// Controller returns the viewer's controller, mounting it on first use.
func (s *Service) Controller(ctx context.Context, viewer ViewerContext, code string) (*Controller, error) {
	return s.controller(ctx, viewer, code)
}

func (s *Service) controller(ctx context.Context, viewer ViewerContext, code string) (*Controller, error) {
	ctrl, created, err := s.mounts.Mount(ctx, viewer, code)
	if err != nil {
		return nil, err
	}
	if created {
		s.recordTelemetry(ctx, "listview.mount", map[string]any{
			"viewer":    viewer.UserID,
			"list_code": code,
			"records":   ctrl.Len(),
		})
	}
	return ctrl, nil
}

// View returns the derived view for the viewer.
func (s *Service) View(ctx context.Context, viewer ViewerContext, code string) (View, error) {
	return s.Mount(ctx, viewer, code)
}

// SetFilter applies a filter and returns the new view.
func (s *Service) SetFilter(ctx context.Context, viewer ViewerContext, code, field, value string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.SetFilter(field, value); err != nil {
		return View{}, err
	}
	s.recordTelemetry(ctx, "listview.filter", map[string]any{
		"list_code": code,
		"field":     field,
		"value":     value,
	})
	return ctrl.View(), nil
}

// ClearFilters removes every filter.
func (s *Service) ClearFilters(ctx context.Context, viewer ViewerContext, code string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	ctrl.ClearFilters()
	s.recordTelemetry(ctx, "listview.filter.clear", map[string]any{"list_code": code})
	return ctrl.View(), nil
}

// SetSort changes the sort key.
func (s *Service) SetSort(ctx context.Context, viewer ViewerContext, code, sortKey string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.SetSort(sortKey); err != nil {
		return View{}, err
	}
	s.recordTelemetry(ctx, "listview.sort", map[string]any{
		"list_code": code,
		"sort":      sortKey,
	})
	return ctrl.View(), nil
}

// ToggleSelect toggles one record in the selection.
func (s *Service) ToggleSelect(ctx context.Context, viewer ViewerContext, code, id string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.ToggleSelect(id); err != nil {
		return View{}, err
	}
	return ctrl.View(), nil
}

// SelectOnly single-selects a record and runs the list's on-select hook. Hook
// mutations are broadcast and audited.
func (s *Service) SelectOnly(ctx context.Context, viewer ViewerContext, code, id string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	rec, changed, err := ctrl.SingleSelect(id)
	if err != nil {
		return View{}, err
	}
	if changed {
		s.notify(ctx, ListEvent{
			ListCode:  code,
			Reason:    "record_updated",
			RecordIDs: []string{rec.ID},
			ActorID:   viewer.UserID,
		})
		s.recordTelemetry(ctx, "listview.select.hook", map[string]any{
			"list_code": code,
			"record_id": rec.ID,
		})
		s.emitActivity(ctx, viewer, activity.Event{
			Verb:           "listview.record.select",
			ObjectType:     "record",
			ObjectID:       rec.ID,
			DefinitionCode: code,
		})
	}
	return ctrl.View(), nil
}

// SelectAll selects every visible record.
func (s *Service) SelectAll(ctx context.Context, viewer ViewerContext, code string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	ctrl.SelectAll()
	return ctrl.View(), nil
}

// ClearSelection empties the selection.
func (s *Service) ClearSelection(ctx context.Context, viewer ViewerContext, code string) (View, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return View{}, err
	}
	ctrl.ClearSelection()
	return ctrl.View(), nil
}

// RequestBulk starts a bulk operation. Operations without confirmation are
// applied right away and reported.
func (s *Service) RequestBulk(ctx context.Context, viewer ViewerContext, code, operation string, data map[string]any) (BulkRequest, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return BulkRequest{}, err
	}
	req, err := ctrl.RequestBulk(ctx, operation, data)
	if err != nil {
		s.recordTelemetry(ctx, "listview.bulk.rejected", map[string]any{
			"list_code": code,
			"operation": operation,
			"error":     err.Error(),
		})
		return BulkRequest{}, err
	}
	s.recordTelemetry(ctx, "listview.bulk.request", map[string]any{
		"list_code":  code,
		"operation":  operation,
		"request_id": req.ID,
		"state":      string(req.State),
		"count":      len(req.RecordIDs),
	})
	if req.Result != nil {
		s.afterBulk(ctx, viewer, *req.Result)
	}
	return req, nil
}

// ConfirmBulk applies a request parked awaiting confirmation.
func (s *Service) ConfirmBulk(ctx context.Context, viewer ViewerContext, code, requestID string) (BulkResult, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return BulkResult{}, err
	}
	result, err := ctrl.ConfirmBulk(ctx, requestID)
	if err != nil {
		return BulkResult{}, err
	}
	s.afterBulk(ctx, viewer, result)
	return result, nil
}

// CancelBulk drops a parked request.
func (s *Service) CancelBulk(ctx context.Context, viewer ViewerContext, code, requestID string) (BulkRequest, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return BulkRequest{}, err
	}
	req, err := ctrl.CancelBulk(requestID)
	if err != nil {
		return BulkRequest{}, err
	}
	s.recordTelemetry(ctx, "listview.bulk.cancel", map[string]any{
		"list_code":  code,
		"operation":  req.Operation.Code,
		"request_id": requestID,
	})
	return req, nil
}

// BulkStatus reports a parked request.
func (s *Service) BulkStatus(ctx context.Context, viewer ViewerContext, code, requestID string) (BulkRequest, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return BulkRequest{}, err
	}
	req, ok := ctrl.PendingBulk(requestID)
	if !ok {
		return BulkRequest{}, ErrUnknownRequest
	}
	return req, nil
}

// BulkHistory returns the applied bulk results for the viewer's list.
func (s *Service) BulkHistory(ctx context.Context, viewer ViewerContext, code string) ([]BulkResult, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return nil, err
	}
	return ctrl.BulkHistory(), nil
}

func (s *Service) afterBulk(ctx context.Context, viewer ViewerContext, result BulkResult) {
	s.notify(ctx, ListEvent{
		ListCode:   result.ListCode,
		Reason:     "bulk",
		Operation:  result.Operation,
		RequestID:  result.RequestID,
		RecordIDs:  result.RecordIDs,
		Message:    result.Message,
		ActorID:    viewer.UserID,
		OccurredAt: result.AppliedAt,
	})
	s.recordTelemetry(ctx, "listview.bulk.apply", map[string]any{
		"list_code":  result.ListCode,
		"operation":  result.Operation,
		"effect":     string(result.Effect),
		"request_id": result.RequestID,
		"count":      result.Affected,
	})
	s.emitActivity(ctx, viewer, activity.Event{
		Verb:           "listview.bulk." + result.Operation,
		ObjectType:     "list",
		ObjectID:       result.ListCode,
		DefinitionCode: result.ListCode,
		Metadata: map[string]any{
			"request_id": result.RequestID,
			"effect":     string(result.Effect),
			"count":      result.Affected,
			"record_ids": result.RecordIDs,
		},
		OccurredAt: result.AppliedAt,
	})
}

// notify reports an event; notifier failures go to telemetry since the list
// change already happened.
func (s *Service) notify(ctx context.Context, event ListEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.opts.Clock()
	}
	if err := s.opts.Notifier.ListUpdated(ctx, event); err != nil {
		s.recordTelemetry(ctx, "listview.notify.error", map[string]any{
			"list_code": event.ListCode,
			"reason":    event.Reason,
			"error":     err.Error(),
		})
	}
}

// Stats returns the aggregates and stat cards for the list.
func (s *Service) Stats(ctx context.Context, viewer ViewerContext, code string) (Stats, []StatCard, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return Stats{}, nil, err
	}
	stats := ctrl.Stats()
	cards := Cards(ctx, ctrl.Definition(), stats, CardOptions{
		Locale:     viewer.Locale,
		Translator: s.opts.Translator,
		Currency:   s.opts.Currency,
	})
	return stats, cards, nil
}

// Chart renders the status distribution chart for the list.
func (s *Service) Chart(ctx context.Context, viewer ViewerContext, code, kind string) (string, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return "", err
	}
	chart := NewStatsChart(kind, WithChartCache(s.opts.ChartCache), WithChartTranslator(s.opts.Translator))
	return chart.Render(ctx, ctrl.Definition(), ctrl.Stats(), viewer.Locale)
}

// ExportVisible builds a report of everything currently visible, without
// touching the selection, and hands it to the exporter.
func (s *Service) ExportVisible(ctx context.Context, viewer ViewerContext, code, format string) (Report, error) {
	ctrl, err := s.controller(ctx, viewer, code)
	if err != nil {
		return Report{}, err
	}
	report := NewReport(ctrl.Definition(), ctrl.VisibleItems(), s.opts.Clock())
	report.Type = "list"
	if format != "" {
		report.Format = format
	}
	if s.opts.Exporter != nil {
		if err := s.opts.Exporter.Export(ctx, report); err != nil {
			return Report{}, err
		}
	}
	s.recordTelemetry(ctx, "listview.export", map[string]any{
		"list_code": code,
		"count":     len(report.Records),
		"filename":  report.Filename(),
	})
	return report, nil
}

type noopNotifier struct{}

func (noopNotifier) ListUpdated(context.Context, ListEvent) error { return nil }
