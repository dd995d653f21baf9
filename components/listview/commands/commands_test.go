package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-listview/components/listview"
)

var viewer = listview.ViewerContext{UserID: "usr-1", Roles: []string{"admin"}, Locale: "en"}

func newService() *listview.Service {
	return listview.NewService(listview.Options{Exporter: &listview.MemoryExporter{}})
}

func TestSetFilterCommand(t *testing.T) {
	service := newService()
	telemetry := &stubTelemetry{}
	cmd := NewSetFilterCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SetFilterInput{
		Viewer:   viewer,
		ListCode: listview.ListInventory,
		Field:    "category",
		Value:    "Fashion",
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	view, _ := service.View(context.Background(), viewer, listview.ListInventory)
	if view.VisibleCount != 1 || view.Items[0].ID != "inv-2" {
		t.Fatalf("expected the handbag only, got %+v", view.Items)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry event")
	}

	if err := cmd.Execute(context.Background(), SetFilterInput{Viewer: viewer, ListCode: listview.ListInventory, Clear: true}); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	view, _ = service.View(context.Background(), viewer, listview.ListInventory)
	if view.VisibleCount != 5 {
		t.Fatalf("expected filters cleared, got %d visible", view.VisibleCount)
	}
}

func TestSetFilterCommandRejectsUnknownField(t *testing.T) {
	cmd := NewSetFilterCommand(newService(), nil)
	err := cmd.Execute(context.Background(), SetFilterInput{Viewer: viewer, ListCode: listview.ListInventory, Field: "colour", Value: "red"})
	if !errors.Is(err, listview.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSetSortCommand(t *testing.T) {
	service := newService()
	cmd := NewSetSortCommand(service, nil)
	if err := cmd.Execute(context.Background(), SetSortInput{Viewer: viewer, ListCode: listview.ListInventory, SortKey: "stock"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	view, _ := service.View(context.Background(), viewer, listview.ListInventory)
	if view.Sort != "stock" || view.Items[0].ID != "inv-1" || view.Items[4].ID != "inv-5" {
		t.Fatalf("unexpected order: %+v", view.Items)
	}
}

func TestSelectCommandModes(t *testing.T) {
	service := newService()
	cmd := NewSelectCommand(service, nil)
	ctx := context.Background()
	code := listview.ListUsers

	if err := cmd.Execute(ctx, SelectInput{Viewer: viewer, ListCode: code, RecordID: "usr-2"}); err != nil {
		t.Fatalf("toggle returned error: %v", err)
	}
	view, _ := service.View(ctx, viewer, code)
	if len(view.Selected) != 1 {
		t.Fatalf("expected one selected, got %v", view.Selected)
	}

	if err := cmd.Execute(ctx, SelectInput{Viewer: viewer, ListCode: code, Mode: SelectAll}); err != nil {
		t.Fatalf("select all returned error: %v", err)
	}
	view, _ = service.View(ctx, viewer, code)
	if !view.AllSelected {
		t.Fatalf("expected all selected")
	}

	if err := cmd.Execute(ctx, SelectInput{Viewer: viewer, ListCode: code, Mode: SelectClear}); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	view, _ = service.View(ctx, viewer, code)
	if len(view.Selected) != 0 {
		t.Fatalf("expected empty selection")
	}

	if err := cmd.Execute(ctx, SelectInput{Viewer: viewer, ListCode: code, Mode: SelectOnly}); err == nil {
		t.Fatalf("expected error without record id")
	}
	if err := cmd.Execute(ctx, SelectInput{Viewer: viewer, ListCode: code, Mode: "lasso"}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSelectOnlyMarksChatRead(t *testing.T) {
	service := newService()
	cmd := NewSelectCommand(service, nil)
	if err := cmd.Execute(context.Background(), SelectInput{Viewer: viewer, ListCode: listview.ListChat, Mode: SelectOnly, RecordID: "chat-4"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	ctrl, _ := service.Controller(context.Background(), viewer, listview.ListChat)
	rec, _ := ctrl.Get("chat-4")
	if n, _ := rec.Number("unreadCount"); n != 0 {
		t.Fatalf("expected unread cleared, got %v", n)
	}
}

func TestBulkCommandsLifecycle(t *testing.T) {
	service := newService()
	ctx := context.Background()
	code := listview.ListInventory
	if _, err := service.ToggleSelect(ctx, viewer, code, "inv-5"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	var req listview.BulkRequest
	request := NewRequestBulkCommand(service, nil)
	if err := request.Execute(ctx, RequestBulkInput{Viewer: viewer, ListCode: code, Operation: "delete", Result: &req}); err != nil {
		t.Fatalf("request returned error: %v", err)
	}
	if req.State != listview.BulkAwaitingConfirmation {
		t.Fatalf("expected awaiting confirmation, got %s", req.State)
	}

	var result listview.BulkResult
	confirm := NewConfirmBulkCommand(service, nil)
	if err := confirm.Execute(ctx, ConfirmBulkInput{Viewer: viewer, ListCode: code, RequestID: req.ID, Result: &result}); err != nil {
		t.Fatalf("confirm returned error: %v", err)
	}
	if result.Affected != 1 {
		t.Fatalf("expected one record deleted, got %d", result.Affected)
	}
	view, _ := service.View(ctx, viewer, code)
	if view.TotalCount != 4 || len(view.Selected) != 0 {
		t.Fatalf("unexpected view after delete: total=%d selected=%v", view.TotalCount, view.Selected)
	}

	if err := confirm.Execute(ctx, ConfirmBulkInput{Viewer: viewer, ListCode: code}); err == nil {
		t.Fatalf("expected error without request id")
	}
}

func TestCancelBulkCommand(t *testing.T) {
	service := newService()
	ctx := context.Background()
	code := listview.ListUsers
	if _, err := service.ToggleSelect(ctx, viewer, code, "usr-4"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	var req listview.BulkRequest
	if err := NewRequestBulkCommand(service, nil).Execute(ctx, RequestBulkInput{Viewer: viewer, ListCode: code, Operation: "suspend", Result: &req}); err != nil {
		t.Fatalf("request: %v", err)
	}
	var cancelled listview.BulkRequest
	if err := NewCancelBulkCommand(service, nil).Execute(ctx, CancelBulkInput{Viewer: viewer, ListCode: code, RequestID: req.ID, Result: &cancelled}); err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	if cancelled.State != listview.BulkCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.State)
	}
}

func TestRequestBulkCommandPropagatesValidation(t *testing.T) {
	service := newService()
	ctx := context.Background()
	if _, err := service.ToggleSelect(ctx, viewer, listview.ListUsers, "usr-2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	telemetry := &stubTelemetry{}
	err := NewRequestBulkCommand(service, telemetry).Execute(ctx, RequestBulkInput{Viewer: viewer, ListCode: listview.ListUsers, Operation: "change_role"})
	if !errors.Is(err, listview.ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
	if telemetry.calls != 0 {
		t.Fatalf("rejected requests should not be recorded as commands")
	}
}

func TestMountAndUnmountCommands(t *testing.T) {
	service := newService()
	ctx := context.Background()
	telemetry := &stubTelemetry{}
	mount := NewMountCommand(service, telemetry)
	for _, code := range []string{listview.ListTickets, listview.ListChat} {
		if err := mount.Execute(ctx, MountInput{Viewer: viewer, ListCode: code}); err != nil {
			t.Fatalf("mount %s: %v", code, err)
		}
	}
	unmount := NewUnmountCommand(service, telemetry)
	if err := unmount.Execute(ctx, UnmountInput{Viewer: viewer, ListCode: listview.ListTickets}); err != nil {
		t.Fatalf("unmount returned error: %v", err)
	}
	if err := unmount.Execute(ctx, UnmountInput{Viewer: viewer, ListCode: listview.ListTickets}); !errors.Is(err, listview.ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
	if err := unmount.Execute(ctx, UnmountInput{Viewer: viewer, All: true}); err != nil {
		t.Fatalf("unmount all returned error: %v", err)
	}
	if telemetry.calls != 4 {
		t.Fatalf("expected 4 telemetry events, got %d", telemetry.calls)
	}
}

func TestExportListCommand(t *testing.T) {
	exporter := &listview.MemoryExporter{}
	service := listview.NewService(listview.Options{Exporter: exporter})
	var report listview.Report
	if err := NewExportListCommand(service, nil).Execute(context.Background(), ExportListInput{
		Viewer:   viewer,
		ListCode: listview.ListProducts,
		Result:   &report,
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(report.Records) != 6 {
		t.Fatalf("expected 6 products, got %d", len(report.Records))
	}
	if _, ok := exporter.Last(); !ok {
		t.Fatalf("expected exporter to receive the report")
	}
}

func TestLoadManifestCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.yaml")
	manifest := "version: \"1\"\nlists:\n  - definition:\n      code: admin.list.orders\n      name: Orders\n    records:\n      - id: ord-1\n        fields: {customer: Peter Kamau}\n"
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	registry := listview.NewRegistry()
	telemetry := &stubTelemetry{}
	if err := NewLoadManifestCommand(registry, telemetry).Execute(context.Background(), LoadManifestInput{Path: path}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if _, ok := registry.Definition("admin.list.orders"); !ok {
		t.Fatalf("expected manifest list to be registered")
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry event")
	}
	if err := NewLoadManifestCommand(registry, nil).Execute(context.Background(), LoadManifestInput{}); err == nil {
		t.Fatalf("expected error without path")
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewSetFilterCommand(nil, nil).Execute(ctx, SetFilterInput{}); err == nil {
		t.Fatalf("expected filter error")
	}
	if err := NewSelectCommand(nil, nil).Execute(ctx, SelectInput{}); err == nil {
		t.Fatalf("expected select error")
	}
	if err := NewRequestBulkCommand(nil, nil).Execute(ctx, RequestBulkInput{}); err == nil {
		t.Fatalf("expected bulk error")
	}
	if err := NewLoadManifestCommand(nil, nil).Execute(ctx, LoadManifestInput{Path: "x"}); err == nil {
		t.Fatalf("expected manifest error")
	}
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}
