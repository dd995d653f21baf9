package listview

import (
	"context"
	"time"
)

// Source loads the initial collection for a list view. Implementations may read
// fixtures, call remote APIs, or return static data.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context) ([]Record, error)

// Records satisfies Source.
func (f SourceFunc) Records(ctx context.Context) ([]Record, error) {
	return f(ctx)
}

// Exporter receives generated reports (file download, object storage, etc.).
type Exporter interface {
	Export(ctx context.Context, report Report) error
}

// EmailDispatcher hands bulk email payloads to a delivery service.
type EmailDispatcher interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Notifier reports list changes (bulk results, hook mutations) to transports.
type Notifier interface {
	ListUpdated(ctx context.Context, event ListEvent) error
}

// DefinitionRegistry stores list definitions and their record sources.
type DefinitionRegistry interface {
	RegisterDefinition(def Definition) error
	RegisterSource(code string, source Source) error
	Definition(code string) (Definition, bool)
	Source(code string) (Source, bool)
	Definitions() []Definition
}

// ViewerContext captures the active user/locale information for a mounted view.
type ViewerContext struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	Locale string   `json:"locale,omitempty"`
}

// EmailMessage is the payload handed to an EmailDispatcher.
type EmailMessage struct {
	ListCode   string
	RecordIDs  []string
	Recipients []string
	Subject    string
	Body       string
}

// ListEvent describes a change that transports might care about.
type ListEvent struct {
	ListCode   string    `json:"list_code"`
	Reason     string    `json:"reason"`
	Operation  string    `json:"operation,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	RecordIDs  []string  `json:"record_ids,omitempty"`
	Message    string    `json:"message,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// View is the derived, read-only state handed to the presentation layer.
type View struct {
	Code         string            `json:"code"`
	Items        []Record          `json:"items"`
	Selected     []string          `json:"selected"`
	AllSelected  bool              `json:"all_selected"`
	Filters      map[string]string `json:"filters"`
	Sort         string            `json:"sort"`
	Stats        Stats             `json:"stats"`
	VisibleCount int               `json:"visible_count"`
	TotalCount   int               `json:"total_count"`
}
