package goadmin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-listview/pkg/goadmin"
	listviewpkg "github.com/goliatone/go-listview/pkg/listview"
)

type stubMenuBuilder struct {
	items []goadmin.MenuItem
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, _ string, item goadmin.MenuItem) error {
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, item)
	return nil
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableLists: true,
		Service:     listviewpkg.NewService(listviewpkg.Options{}),
		MenuBuilder: builder,
		Locale:      "sw",
		Hidden:      []string{"admin.list.chat"},
		Icons:       map[string]string{"admin.list.users": "user-check"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 4 {
		t.Fatalf("expected 4 menu items, got %d", len(builder.items))
	}
	for i, item := range builder.items {
		if item.Position != i {
			t.Fatalf("expected position %d, got %d", i, item.Position)
		}
		if item.Code == "admin.list.inventory" {
			if item.Label != "Hesabu ya Bidhaa" || item.Route != "/admin/lists/admin.list.inventory" || item.Icon != "box" {
				t.Fatalf("unexpected inventory item %+v", item)
			}
		}
		if item.Code == "admin.list.users" && item.Icon != "user-check" {
			t.Fatalf("expected icon override, got %s", item.Icon)
		}
	}
	if admin.Lists() == nil {
		t.Fatalf("expected list service")
	}
}

func TestAdminBootstrapPropagatesErrors(t *testing.T) {
	builder := &stubMenuBuilder{err: errors.New("menu store offline")}
	admin, err := goadmin.New(goadmin.Config{
		EnableLists: true,
		Service:     listviewpkg.NewService(listviewpkg.Options{}),
		MenuBuilder: builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected bootstrap error")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableLists: false,
		MenuBuilder: builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 0 {
		t.Fatalf("expected no menu items, got %d", len(builder.items))
	}
	if admin.Lists() != nil {
		t.Fatalf("expected nil service when disabled")
	}
}

func TestAdminRequiresServiceWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableLists: true}); err == nil {
		t.Fatalf("expected error without service")
	}
}
