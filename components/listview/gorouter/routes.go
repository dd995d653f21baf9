package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-listview/components/listview"
	"github.com/goliatone/go-listview/components/listview/commands"
	"github.com/goliatone/go-listview/components/listview/httpapi"
	"github.com/goliatone/go-listview/components/listview/queries"
	"github.com/goliatone/go-listview/pkg/session"
)

// ViewerResolver converts a router.Context into a listview.ViewerContext.
type ViewerResolver func(router.Context) listview.ViewerContext

// Config wires go-router with the list pages, the JSON API, the broadcast
// hook and the session manager.
type Config[T any] struct {
	Router         router.Router[T]
	Pages          *listview.PageController
	API            httpapi.Executor
	Broadcast      *listview.BroadcastHook
	Sessions       *session.Manager
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for list endpoints.
type RouteConfig struct {
	HTML        string
	View        string
	Filters     string
	Sort        string
	Select      string
	SelectAll   string
	Bulk        string
	BulkRequest string
	BulkConfirm string
	Stats       string
	Export      string
	List        string
	WebSocket   string
	Login       string
	Logout      string
}

// Register mounts list routes (HTML, JSON, WebSocket, session) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api executor is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	var guard []router.MiddlewareFunc
	if cfg.Sessions != nil {
		guard = append(guard, sessionGuard(cfg.Sessions))
	}

	group := cfg.Router.Group(base)

	if cfg.Sessions != nil {
		registerSession(group, cfg.Sessions, cfg.API, routes)
	}

	// static segments first so ":code" does not swallow them
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	if cfg.Pages != nil {
		group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			viewer := viewerResolver(ctx)
			var buf bytes.Buffer
			if _, err := cfg.Pages.Render(ctx.Context(), viewer, ctx.Param("code"), &buf); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}), guard...)
	}

	registerAPI(group, cfg.API, viewerResolver, routes, guard)
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig, mw []router.MiddlewareFunc) {
	input := func(ctx router.Context) queries.ListInput {
		return queries.ListInput{Viewer: resolver(ctx), ListCode: ctx.Param("code")}
	}

	r.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		view, err := api.View(ctx.Context(), input(ctx))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}), mw...)

	r.Get(routes.Stats, router.WrapHandler(func(ctx router.Context) error {
		result, err := api.Stats(ctx.Context(), input(ctx))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, result)
	}), mw...)

	r.Post(routes.Filters, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetFilterInput
		if err := decodeBody(ctx, &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Viewer = resolver(ctx)
		payload.ListCode = ctx.Param("code")
		return respondView(ctx)(api.SetFilter(ctx.Context(), payload))
	}), mw...)

	r.Delete(routes.Filters, router.WrapHandler(func(ctx router.Context) error {
		payload := commands.SetFilterInput{Viewer: resolver(ctx), ListCode: ctx.Param("code"), Clear: true}
		return respondView(ctx)(api.SetFilter(ctx.Context(), payload))
	}), mw...)

	r.Post(routes.Sort, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetSortInput
		if err := decodeBody(ctx, &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Viewer = resolver(ctx)
		payload.ListCode = ctx.Param("code")
		return respondView(ctx)(api.SetSort(ctx.Context(), payload))
	}), mw...)

	r.Post(routes.Select, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SelectInput
		if err := decodeBody(ctx, &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Viewer = resolver(ctx)
		payload.ListCode = ctx.Param("code")
		return respondView(ctx)(api.Select(ctx.Context(), payload))
	}), mw...)

	r.Post(routes.SelectAll, router.WrapHandler(func(ctx router.Context) error {
		payload := commands.SelectInput{Viewer: resolver(ctx), ListCode: ctx.Param("code"), Mode: commands.SelectAll}
		return respondView(ctx)(api.Select(ctx.Context(), payload))
	}), mw...)

	r.Delete(routes.Select, router.WrapHandler(func(ctx router.Context) error {
		payload := commands.SelectInput{Viewer: resolver(ctx), ListCode: ctx.Param("code"), Mode: commands.SelectClear}
		return respondView(ctx)(api.Select(ctx.Context(), payload))
	}), mw...)

	r.Post(routes.Bulk, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RequestBulkInput
		if err := decodeBody(ctx, &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Viewer = resolver(ctx)
		payload.ListCode = ctx.Param("code")
		req, err := api.RequestBulk(ctx.Context(), payload)
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		status := http.StatusOK
		if req.NeedsConfirmation() {
			status = http.StatusAccepted
		}
		return ctx.JSON(status, req)
	}), mw...)

	r.Get(routes.BulkRequest, router.WrapHandler(func(ctx router.Context) error {
		req, err := api.BulkStatus(ctx.Context(), queries.BulkStatusInput{
			Viewer:    resolver(ctx),
			ListCode:  ctx.Param("code"),
			RequestID: ctx.Param("request"),
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, req)
	}), mw...)

	r.Post(routes.BulkConfirm, router.WrapHandler(func(ctx router.Context) error {
		result, err := api.ConfirmBulk(ctx.Context(), commands.ConfirmBulkInput{
			Viewer:    resolver(ctx),
			ListCode:  ctx.Param("code"),
			RequestID: ctx.Param("request"),
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, result)
	}), mw...)

	r.Delete(routes.BulkRequest, router.WrapHandler(func(ctx router.Context) error {
		req, err := api.CancelBulk(ctx.Context(), commands.CancelBulkInput{
			Viewer:    resolver(ctx),
			ListCode:  ctx.Param("code"),
			RequestID: ctx.Param("request"),
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, req)
	}), mw...)

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		report, err := api.Export(ctx.Context(), commands.ExportListInput{
			Viewer:   resolver(ctx),
			ListCode: ctx.Param("code"),
			Format:   ctx.Query("format"),
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		data, err := report.Bytes()
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", report.ContentType())
		ctx.SetHeader("Content-Disposition", `attachment; filename="`+report.Filename()+`"`)
		return ctx.Send(data)
	}), mw...)

	r.Delete(routes.List, router.WrapHandler(func(ctx router.Context) error {
		err := api.Unmount(ctx.Context(), commands.UnmountInput{Viewer: resolver(ctx), ListCode: ctx.Param("code")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "unmounted"})
	}), mw...)
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerSession[T any](r router.Router[T], sessions *session.Manager, api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Login, router.WrapHandler(func(ctx router.Context) error {
		var payload loginPayload
		if err := decodeBody(ctx, &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		token, sess, err := sessions.Login(ctx.Context(), payload.Email, payload.Password)
		if err != nil {
			return respondError(ctx, http.StatusUnauthorized, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"token": token, "session": sess})
	}))

	r.Post(routes.Logout, router.WrapHandler(func(ctx router.Context) error {
		sess, err := sessions.Logout(session.BearerToken(ctx.Header("Authorization")))
		if err != nil {
			return respondError(ctx, http.StatusUnauthorized, err)
		}
		if err := api.Unmount(ctx.Context(), commands.UnmountInput{Viewer: sess.Viewer(), All: true}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
	}))
}

func sessionGuard(sessions *session.Manager) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			sess, err := sessions.Validate(session.BearerToken(ctx.Header("Authorization")))
			if err != nil {
				ctx.SetHeader("WWW-Authenticate", `Bearer realm="admin"`)
				return respondError(ctx, http.StatusUnauthorized, err)
			}
			ctx.Locals("user_id", sess.UserID)
			ctx.Locals("roles", sess.Roles)
			if sess.Locale != "" {
				ctx.Locals("locale", sess.Locale)
			}
			return next(ctx)
		}
	}
}

func registerWebSocket[T any](r router.Router[T], hook *listview.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondView(ctx router.Context) func(listview.View, error) error {
	return func(view listview.View, err error) error {
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}
}

func decodeBody(ctx router.Context, v any) error {
	body := ctx.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func defaultViewerResolver(ctx router.Context) listview.ViewerContext {
	var viewer listview.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return httpapi.ParseAcceptLanguage(ctx.Header("Accept-Language"))
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	set := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	set(&routes.HTML, "/lists/:code")
	set(&routes.View, "/lists/:code/_view")
	set(&routes.Filters, "/lists/:code/filters")
	set(&routes.Sort, "/lists/:code/sort")
	set(&routes.Select, "/lists/:code/select")
	set(&routes.SelectAll, "/lists/:code/select-all")
	set(&routes.Bulk, "/lists/:code/bulk")
	set(&routes.BulkRequest, "/lists/:code/bulk/:request")
	set(&routes.BulkConfirm, "/lists/:code/bulk/:request/confirm")
	set(&routes.Stats, "/lists/:code/stats")
	set(&routes.Export, "/lists/:code/export")
	set(&routes.List, "/lists/:code")
	set(&routes.WebSocket, "/lists/ws")
	set(&routes.Login, "/login")
	set(&routes.Logout, "/logout")
	return routes
}
