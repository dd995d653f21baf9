package goadmin

import (
	"context"
	"errors"
	"fmt"
	"path"

	listviewpkg "github.com/goliatone/go-listview/pkg/listview"
)

// MenuBuilder ensures list entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures list link metadata.
type MenuItem struct {
	Code     string
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the list service + feature flags into an admin shell.
type Config struct {
	EnableLists bool
	MenuCode    string
	MenuBuilder MenuBuilder
	Service     *listviewpkg.Service
	BasePath    string
	Locale      string
	// Icons maps list codes to menu icons. Lists without an entry use "list".
	Icons map[string]string
	// Hidden list codes get no menu entry.
	Hidden []string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

var defaultIcons = map[string]string{
	"admin.list.inventory": "box",
	"admin.list.products":  "tag",
	"admin.list.users":     "users",
	"admin.list.tickets":   "life-buoy",
	"admin.list.chat":      "message-circle",
}

// New creates an Admin helper that can seed list menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableLists && cfg.Service == nil {
		return nil, errors.New("goadmin: list service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/admin"
	}
	return &Admin{cfg: cfg}, nil
}

// Lists exposes the configured list service when enabled.
func (a *Admin) Lists() *listviewpkg.Service {
	if !a.cfg.EnableLists {
		return nil
	}
	return a.cfg.Service
}

// MenuItems returns one entry per registered list, ordered by list code.
func (a *Admin) MenuItems() []MenuItem {
	if !a.cfg.EnableLists {
		return nil
	}
	hidden := make(map[string]struct{}, len(a.cfg.Hidden))
	for _, code := range a.cfg.Hidden {
		hidden[code] = struct{}{}
	}
	var items []MenuItem
	for _, def := range a.cfg.Service.Definitions() {
		if _, skip := hidden[def.Code]; skip {
			continue
		}
		icon := a.cfg.Icons[def.Code]
		if icon == "" {
			icon = defaultIcons[def.Code]
		}
		if icon == "" {
			icon = "list"
		}
		items = append(items, MenuItem{
			Code:     def.Code,
			Label:    def.NameForLocale(a.cfg.Locale),
			Route:    path.Join(a.cfg.BasePath, "lists", def.Code),
			Icon:     icon,
			Position: len(items),
		})
	}
	return items
}

// Bootstrap seeds menu entries when list support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableLists || a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: ensure menu item %s: %w", item.Code, err)
		}
	}
	return nil
}
