package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-listview/components/listview"
	"github.com/goliatone/go-listview/components/listview/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func newTestServer(t *testing.T) (*httptest.Server, *listview.MemoryExporter) {
	t.Helper()
	exporter := &listview.MemoryExporter{}
	service := listview.NewService(listview.Options{Exporter: exporter})
	srv := httptest.NewServer(NewHandlers(NewServiceExecutor(service, nil)).Mux())
	t.Cleanup(srv.Close)
	return srv, exporter
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-User-ID", "usr-1")
	req.Header.Set("X-User-Roles", "admin, support")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeView(t *testing.T, resp *http.Response) listview.View {
	t.Helper()
	var view listview.View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func TestFilterSortSelectOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	base := "/lists/" + listview.ListInventory

	resp := do(t, srv, http.MethodPost, base+"/filters", map[string]string{"field": "category", "value": "Home Decor"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if view := decodeView(t, resp); view.VisibleCount != 2 {
		t.Fatalf("expected 2 home decor items, got %d", view.VisibleCount)
	}

	resp = do(t, srv, http.MethodPost, base+"/sort", map[string]string{"sort": "stock_asc"})
	view := decodeView(t, resp)
	if view.Items[0].ID != "inv-5" {
		t.Fatalf("expected basket first, got %s", view.Items[0].ID)
	}

	resp = do(t, srv, http.MethodPost, base+"/select", map[string]string{"mode": "all"})
	view = decodeView(t, resp)
	if !view.AllSelected || len(view.Selected) != 2 {
		t.Fatalf("expected both visible records selected, got %v", view.Selected)
	}

	resp = do(t, srv, http.MethodDelete, base+"/filters", nil)
	view = decodeView(t, resp)
	if view.VisibleCount != 5 || view.AllSelected {
		t.Fatalf("expected all records visible and partial selection")
	}
}

func TestValidationErrorsMapToStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	base := "/lists/" + listview.ListInventory

	if resp := do(t, srv, http.MethodPost, base+"/filters", map[string]string{"field": "colour", "value": "red"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodPost, base+"/select", map[string]string{"id": "inv-99"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown record, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodGet, "/lists/admin.list.nope", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown list, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodPost, base+"/bulk", map[string]string{"operation": "export"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection, got %d", resp.StatusCode)
	}
}

func TestBulkLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	base := "/lists/" + listview.ListUsers

	do(t, srv, http.MethodPost, base+"/select", map[string]string{"id": "usr-3"})
	resp := do(t, srv, http.MethodPost, base+"/bulk", map[string]any{"operation": "change_role"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without role, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodPost, base+"/bulk", map[string]any{"operation": "suspend"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 for destructive op, got %d", resp.StatusCode)
	}
	var req listview.BulkRequest
	if err := json.NewDecoder(resp.Body).Decode(&req); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	resp = do(t, srv, http.MethodGet, fmt.Sprintf("%s/bulk/%s", base, req.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodPost, fmt.Sprintf("%s/bulk/%s/confirm", base, req.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected confirm 200, got %d", resp.StatusCode)
	}
	var result listview.BulkResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.RecordIDs) != 1 || result.RecordIDs[0] != "usr-3" {
		t.Fatalf("unexpected result ids %v", result.RecordIDs)
	}

	resp = do(t, srv, http.MethodDelete, fmt.Sprintf("%s/bulk/%s", base, req.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 cancelling an applied request, got %d", resp.StatusCode)
	}
}

func TestExportOverHTTP(t *testing.T) {
	srv, exporter := newTestServer(t)
	resp := do(t, srv, http.MethodGet, "/lists/"+listview.ListInventory+"/export?format=csv", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "inventory-list-") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if _, ok := exporter.Last(); !ok {
		t.Fatalf("expected exporter call")
	}
}

func TestStatsAndUnmountOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	base := "/lists/" + listview.ListTickets
	resp := do(t, srv, http.MethodGet, base+"/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodDelete, base, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodDelete, base, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for second unmount, got %d", resp.StatusCode)
	}
}

func TestHandleSetFilterUsesCommander(t *testing.T) {
	filter := &stubCommander[commands.SetFilterInput]{}
	api := &Handlers{API: &CommandExecutor{FilterCommander: filter}}
	body := strings.NewReader(`{"field":"status","value":"open"}`)
	req := httptest.NewRequest(http.MethodPost, "/lists/admin.list.tickets/filters", body)
	req.Header.Set("X-User-ID", "usr-6")
	rec := httptest.NewRecorder()
	api.HandleSetFilter(rec, req, listview.ListTickets)

	if filter.calls != 1 {
		t.Fatalf("expected filter to execute")
	}
	if filter.last.ListCode != listview.ListTickets || filter.last.Viewer.UserID != "usr-6" {
		t.Fatalf("expected path and viewer propagation, got %+v", filter.last)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without a view querier, got %d", rec.Code)
	}
}

func TestHandleSetFilterRejectsMalformedBody(t *testing.T) {
	filter := &stubCommander[commands.SetFilterInput]{}
	api := &Handlers{API: &CommandExecutor{FilterCommander: filter}}
	req := httptest.NewRequest(http.MethodPost, "/lists/x/filters", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	api.HandleSetFilter(rec, req, "x")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if filter.calls != 0 {
		t.Fatalf("commander should not run")
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{listview.ErrMissingViewer, http.StatusUnauthorized},
		{listview.ErrUnknownRequest, http.StatusNotFound},
		{listview.ErrRequestNotActive, http.StatusConflict},
		{listview.ErrUnknownSortKey, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", listview.ErrMissingData), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHeaderViewer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "usr-2")
	req.Header.Set("X-User-Roles", "artisan,")
	req.Header.Set("Accept-Language", "SW-KE;q=0.9, en")
	viewer := HeaderViewer(req)
	if viewer.UserID != "usr-2" || len(viewer.Roles) != 1 || viewer.Locale != "sw-ke" {
		t.Fatalf("unexpected viewer %+v", viewer)
	}
}
