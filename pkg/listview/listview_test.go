package listview_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-listview/pkg/listview"
)

func TestFacadeMountsDefaults(t *testing.T) {
	service := listview.NewService(listview.Options{Registry: listview.NewRegistry()})
	view, err := service.Mount(context.Background(), listview.ViewerContext{UserID: "usr-1"}, "admin.list.inventory")
	if err != nil {
		t.Fatalf("Mount returned error: %v", err)
	}
	if view.VisibleCount != 5 {
		t.Fatalf("expected 5 inventory records, got %d", view.VisibleCount)
	}
	if len(listview.DefaultDefinitions()) != 5 {
		t.Fatalf("expected 5 built-in lists")
	}
}
