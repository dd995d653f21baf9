package telemetry

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Sink matches the Telemetry interfaces used by the listview service and its
// commands.
type Sink interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Zap logs every event at debug level, errors (events ending in ".error" or
// ".rejected") at warn.
type Zap struct {
	Logger *zap.Logger
}

func (z Zap) Record(_ context.Context, event string, payload map[string]any) {
	if z.Logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(payload))
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, payload[k]))
	}
	if isFailure(event) {
		z.Logger.Warn(event, fields...)
		return
	}
	z.Logger.Debug(event, fields...)
}

func isFailure(event string) bool {
	for _, suffix := range []string{".error", ".rejected"} {
		if len(event) >= len(suffix) && event[len(event)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// Prometheus counts events and the records touched by bulk operations.
type Prometheus struct {
	events *prometheus.CounterVec
	bulk   *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg. A nil reg uses the default
// registerer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listview",
			Name:      "events_total",
			Help:      "List controller events by name.",
		}, []string{"event"}),
		bulk: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listview",
			Name:      "bulk_records_total",
			Help:      "Records affected by applied bulk operations.",
		}, []string{"list_code", "operation"}),
	}
	for _, c := range []prometheus.Collector{p.events, p.bulk} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("telemetry: register collector: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) Record(_ context.Context, event string, payload map[string]any) {
	p.events.WithLabelValues(event).Inc()
	if event != "listview.bulk.apply" {
		return
	}
	count, ok := payload["count"].(int)
	if !ok || count <= 0 {
		return
	}
	p.bulk.WithLabelValues(label(payload["list_code"]), label(payload["operation"])).Add(float64(count))
}

func label(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Multi fans an event out to every sink.
type Multi []Sink

func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range m {
		if sink != nil {
			sink.Record(ctx, event, payload)
		}
	}
}
