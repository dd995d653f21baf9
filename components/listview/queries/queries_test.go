package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-listview/components/listview"
)

var viewer = listview.ViewerContext{UserID: "usr-1", Locale: "sw"}

type stubViewService struct {
	calls int
	code  string
}

func (s *stubViewService) View(_ context.Context, _ listview.ViewerContext, code string) (listview.View, error) {
	s.calls++
	s.code = code
	return listview.View{Code: code}, nil
}

func TestViewQuery(t *testing.T) {
	service := &stubViewService{}
	view, err := NewViewQuery(service).Query(context.Background(), ListInput{Viewer: viewer, ListCode: listview.ListUsers})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || view.Code != listview.ListUsers {
		t.Fatalf("expected one call for users, got %d (%s)", service.calls, view.Code)
	}
}

func TestStatsQuery(t *testing.T) {
	service := listview.NewService(listview.Options{})
	result, err := NewStatsQuery(service).Query(context.Background(), ListInput{Viewer: viewer, ListCode: listview.ListInventory})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if result.Stats.Bucket("lowStockItems") != 2 || result.Stats.Bucket("inStockItems") != 3 {
		t.Fatalf("unexpected buckets: %+v", result.Stats.Buckets)
	}
	if len(result.Cards) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(result.Cards))
	}
}

func TestStatsQueryUnknownList(t *testing.T) {
	service := listview.NewService(listview.Options{})
	_, err := NewStatsQuery(service).Query(context.Background(), ListInput{Viewer: viewer, ListCode: "admin.list.nope"})
	if !errors.Is(err, listview.ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList, got %v", err)
	}
}

func TestPageQueryLocalizesTitle(t *testing.T) {
	service := listview.NewService(listview.Options{})
	page, err := NewPageQuery(service).Query(context.Background(), ListInput{Viewer: viewer, ListCode: listview.ListInventory})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if page.Title != "Hesabu ya Bidhaa" {
		t.Fatalf("expected swahili title, got %q", page.Title)
	}
}

func TestDefinitionsQuery(t *testing.T) {
	service := listview.NewService(listview.Options{})
	defs, err := NewDefinitionsQuery(service).Query(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(defs) != 5 {
		t.Fatalf("expected 5 lists, got %d", len(defs))
	}
	if defs[0].Code != listview.ListChat {
		t.Fatalf("expected lists ordered by code, got %s first", defs[0].Code)
	}
}

func TestBulkStatusQuery(t *testing.T) {
	service := listview.NewService(listview.Options{})
	ctx := context.Background()
	if _, err := service.ToggleSelect(ctx, viewer, listview.ListTickets, "tkt-2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	req, err := service.RequestBulk(ctx, viewer, listview.ListTickets, "close", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	query := NewBulkStatusQuery(service)
	status, err := query.Query(ctx, BulkStatusInput{Viewer: viewer, ListCode: listview.ListTickets, RequestID: req.ID})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if status.State != listview.BulkAwaitingConfirmation {
		t.Fatalf("expected awaiting confirmation, got %s", status.State)
	}
	if _, err := query.Query(ctx, BulkStatusInput{Viewer: viewer, ListCode: listview.ListTickets, RequestID: "missing"}); !errors.Is(err, listview.ErrUnknownRequest) {
		t.Fatalf("expected ErrUnknownRequest, got %v", err)
	}
}
