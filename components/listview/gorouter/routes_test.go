package gorouter

import (
	"testing"

	"github.com/goliatone/go-listview/components/listview"
	"github.com/goliatone/go-listview/components/listview/httpapi"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router is missing")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Export: "/lists/:code/download"})
	if routes.Export != "/lists/:code/download" {
		t.Fatalf("custom export path overwritten: %s", routes.Export)
	}
	if routes.HTML != "/lists/:code" || routes.View != "/lists/:code/_view" {
		t.Fatalf("unexpected list paths: %+v", routes)
	}
	if routes.BulkConfirm != "/lists/:code/bulk/:request/confirm" {
		t.Fatalf("unexpected confirm path %s", routes.BulkConfirm)
	}
	if routes.WebSocket != "/lists/ws" || routes.Login != "/login" || routes.Logout != "/logout" {
		t.Fatalf("unexpected auxiliary paths: %+v", routes)
	}
}

func TestConfigRoutesAppliesDefaults(t *testing.T) {
	cfg := Config[struct{}]{
		API:   httpapi.NewServiceExecutor(listview.NewService(listview.Options{}), nil),
		Pages: listview.NewPageController(listview.NewService(listview.Options{}), nil),
	}
	routes := cfg.routes()
	if routes.SelectAll != "/lists/:code/select-all" {
		t.Fatalf("expected select-all default, got %s", routes.SelectAll)
	}
	if routes.List != routes.HTML {
		t.Fatalf("unmount and page should share the list path")
	}
}
