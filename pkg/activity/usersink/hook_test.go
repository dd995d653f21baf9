package usersink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-listview/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []types.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsListEvents(t *testing.T) {
	actor := uuid.New()
	tenant := uuid.New()
	at := time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		event activity.Event
		check func(t *testing.T, record types.ActivityRecord)
	}{
		{
			name: "bulk role change",
			event: activity.Event{
				Verb:           "listview.bulk.change_role",
				ActorID:        actor.String(),
				TenantID:       tenant.String(),
				ObjectType:     "list",
				ObjectID:       "admin.list.users",
				Channel:        "listview",
				DefinitionCode: "admin.list.users",
				Metadata:       map[string]any{"count": 2, "role": "moderator"},
				OccurredAt:     at,
			},
			check: func(t *testing.T, record types.ActivityRecord) {
				if record.ActorID != actor || record.TenantID != tenant {
					t.Fatalf("expected actor/tenant ids, got %s/%s", record.ActorID, record.TenantID)
				}
				if record.UserID != uuid.Nil {
					t.Fatalf("expected nil user for empty id, got %s", record.UserID)
				}
				if record.Data["role"] != "moderator" || record.Data["count"] != 2 {
					t.Fatalf("expected bulk metadata, got %v", record.Data)
				}
				if record.Data["definition_code"] != "admin.list.users" {
					t.Fatalf("expected definition_code, got %v", record.Data["definition_code"])
				}
				if !record.OccurredAt.Equal(at) {
					t.Fatalf("expected occurred_at %v, got %v", at, record.OccurredAt)
				}
			},
		},
		{
			name: "email dispatch carries recipients",
			event: activity.Event{
				Verb:       "listview.bulk.send_email",
				ActorID:    actor.String(),
				ObjectType: "list",
				ObjectID:   "admin.list.users",
				Recipients: []string{"wanjiru@craftmarket.co.ke"},
			},
			check: func(t *testing.T, record types.ActivityRecord) {
				recipients, ok := record.Data["recipients"].([]string)
				if !ok || len(recipients) != 1 || recipients[0] != "wanjiru@craftmarket.co.ke" {
					t.Fatalf("expected recipients, got %v", record.Data["recipients"])
				}
				if _, ok := record.Data["definition_code"]; ok {
					t.Fatalf("definition_code should be omitted when empty")
				}
			},
		},
		{
			name: "record updated on select",
			event: activity.Event{
				Verb:       "listview.record_updated",
				ActorID:    actor.String(),
				ObjectType: "record",
				ObjectID:   "chat-3",
				Channel:    "support",
			},
			check: func(t *testing.T, record types.ActivityRecord) {
				if record.ObjectType != "record" || record.ObjectID != "chat-3" || record.Channel != "support" {
					t.Fatalf("unexpected record payload: %+v", record)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			if err := (Hook{Sink: sink}).Notify(context.Background(), tc.event); err != nil {
				t.Fatalf("notify: %v", err)
			}
			if len(sink.records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(sink.records))
			}
			if sink.records[0].Verb != tc.event.Verb {
				t.Fatalf("expected verb %q, got %q", tc.event.Verb, sink.records[0].Verb)
			}
			tc.check(t, sink.records[0])
		})
	}
}

func TestHookNotifySkipsBlankVerbAndPropagatesSinkErrors(t *testing.T) {
	if err := (Hook{}).Notify(context.Background(), activity.Event{Verb: "listview.bulk.delete", ObjectType: "list"}); err != nil {
		t.Fatalf("nil sink should be a no-op, got %v", err)
	}

	sink := &recordingSink{err: errors.New("activity table locked")}
	hook := Hook{Sink: sink}
	if err := hook.Notify(context.Background(), activity.Event{Verb: "   ", ObjectType: "list"}); err != nil {
		t.Fatalf("blank verb should be skipped, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for blank verb, got %d", len(sink.records))
	}

	err := hook.Notify(context.Background(), activity.Event{Verb: "listview.bulk.delete", ObjectType: "list"})
	if !errors.Is(err, sink.err) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookNotifyMapsNonUUIDToNil(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       "listview.record.read",
		ActorID:    "admin",
		ObjectType: "record",
		ObjectID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor for non-uuid id, got %s", sink.records[0].ActorID)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
}
