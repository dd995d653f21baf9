package listview

import (
	"context"

	"github.com/goliatone/go-listview/pkg/activity"
)

// Telemetry records list events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

// ActivityContext identifies who triggered an operation. Transports attach it
// to the request context; the service copies it onto audit events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on ctx.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// ActivityFromContext extracts the activity context, if present.
func ActivityFromContext(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	meta, _ := ctx.Value(activityContextKey{}).(ActivityContext)
	return meta
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// emitActivity sends an audit event; emitter failures only reach telemetry.
func (s *Service) emitActivity(ctx context.Context, viewer ViewerContext, evt activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	meta := ActivityFromContext(ctx)
	if evt.ActorID == "" {
		evt.ActorID = meta.ActorID
	}
	if evt.ActorID == "" {
		evt.ActorID = viewer.UserID
	}
	if evt.UserID == "" {
		evt.UserID = meta.UserID
	}
	if evt.UserID == "" {
		evt.UserID = viewer.UserID
	}
	if evt.TenantID == "" {
		evt.TenantID = meta.TenantID
	}
	if err := s.activity.Emit(ctx, evt); err != nil {
		s.recordTelemetry(ctx, "listview.activity.error", map[string]any{
			"verb":  evt.Verb,
			"error": err.Error(),
		})
	}
}
