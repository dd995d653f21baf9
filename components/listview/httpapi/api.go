package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-listview/components/listview"
	"github.com/goliatone/go-listview/components/listview/commands"
	"github.com/goliatone/go-listview/components/listview/queries"
)

// ViewerResolver extracts the viewer from a request.
type ViewerResolver func(*http.Request) listview.ViewerContext

// Handlers exposes list endpoints over net/http, backed by an Executor.
type Handlers struct {
	API    Executor
	Viewer ViewerResolver
}

// NewHandlers builds handlers with the header based viewer resolver.
func NewHandlers(api Executor) *Handlers {
	return &Handlers{API: api, Viewer: HeaderViewer}
}

// HeaderViewer reads the viewer from X-User-ID, X-User-Roles and the
// Accept-Language header.
func HeaderViewer(r *http.Request) listview.ViewerContext {
	viewer := listview.ViewerContext{UserID: r.Header.Get("X-User-ID")}
	if roles := r.Header.Get("X-User-Roles"); roles != "" {
		for _, role := range strings.Split(roles, ",") {
			if role = strings.TrimSpace(role); role != "" {
				viewer.Roles = append(viewer.Roles, role)
			}
		}
	}
	viewer.Locale = ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	return viewer
}

// Mux registers every handler under /lists/{code}.
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lists/{code}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleView(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("GET /lists/{code}/stats", func(w http.ResponseWriter, r *http.Request) {
		h.HandleStats(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("POST /lists/{code}/filters", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSetFilter(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("DELETE /lists/{code}/filters", func(w http.ResponseWriter, r *http.Request) {
		h.HandleClearFilters(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("POST /lists/{code}/sort", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSetSort(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("POST /lists/{code}/select", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSelect(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("POST /lists/{code}/bulk", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRequestBulk(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("GET /lists/{code}/bulk/{request}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleBulkStatus(w, r, r.PathValue("code"), r.PathValue("request"))
	})
	mux.HandleFunc("POST /lists/{code}/bulk/{request}/confirm", func(w http.ResponseWriter, r *http.Request) {
		h.HandleConfirmBulk(w, r, r.PathValue("code"), r.PathValue("request"))
	})
	mux.HandleFunc("DELETE /lists/{code}/bulk/{request}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleCancelBulk(w, r, r.PathValue("code"), r.PathValue("request"))
	})
	mux.HandleFunc("GET /lists/{code}/export", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExport(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("DELETE /lists/{code}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleUnmount(w, r, r.PathValue("code"))
	})
	return mux
}

func (h *Handlers) viewer(r *http.Request) listview.ViewerContext {
	if h.Viewer == nil {
		return HeaderViewer(r)
	}
	return h.Viewer(r)
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request, code string) {
	view, err := h.API.View(r.Context(), queries.ListInput{Viewer: h.viewer(r), ListCode: code})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request, code string) {
	result, err := h.API.Stats(r.Context(), queries.ListInput{Viewer: h.viewer(r), ListCode: code})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleSetFilter(w http.ResponseWriter, r *http.Request, code string) {
	var payload commands.SetFilterInput
	if err := decode(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	payload.ListCode = code
	view, err := h.API.SetFilter(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleClearFilters(w http.ResponseWriter, r *http.Request, code string) {
	view, err := h.API.SetFilter(r.Context(), commands.SetFilterInput{Viewer: h.viewer(r), ListCode: code, Clear: true})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleSetSort(w http.ResponseWriter, r *http.Request, code string) {
	var payload commands.SetSortInput
	if err := decode(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	payload.ListCode = code
	view, err := h.API.SetSort(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request, code string) {
	var payload commands.SelectInput
	if err := decode(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	payload.ListCode = code
	view, err := h.API.Select(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRequestBulk answers 202 when the request awaits confirmation and 200
// when it was applied right away.
func (h *Handlers) HandleRequestBulk(w http.ResponseWriter, r *http.Request, code string) {
	var payload commands.RequestBulkInput
	if err := decode(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	payload.ListCode = code
	req, err := h.API.RequestBulk(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if req.NeedsConfirmation() {
		status = http.StatusAccepted
	}
	writeJSON(w, status, req)
}

func (h *Handlers) HandleBulkStatus(w http.ResponseWriter, r *http.Request, code, requestID string) {
	req, err := h.API.BulkStatus(r.Context(), queries.BulkStatusInput{Viewer: h.viewer(r), ListCode: code, RequestID: requestID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handlers) HandleConfirmBulk(w http.ResponseWriter, r *http.Request, code, requestID string) {
	result, err := h.API.ConfirmBulk(r.Context(), commands.ConfirmBulkInput{Viewer: h.viewer(r), ListCode: code, RequestID: requestID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleCancelBulk(w http.ResponseWriter, r *http.Request, code, requestID string) {
	req, err := h.API.CancelBulk(r.Context(), commands.CancelBulkInput{Viewer: h.viewer(r), ListCode: code, RequestID: requestID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleExport streams a report of the visible records as an attachment.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request, code string) {
	report, err := h.API.Export(r.Context(), commands.ExportListInput{
		Viewer:   h.viewer(r),
		ListCode: code,
		Format:   r.URL.Query().Get("format"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename()+`"`)
	if err := report.Encode(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) HandleUnmount(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.API.Unmount(r.Context(), commands.UnmountInput{Viewer: h.viewer(r), ListCode: code}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ParseAcceptLanguage returns the first language tag of the header, lowercased.
func ParseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}
