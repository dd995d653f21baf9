package listview

import (
	"fmt"
	"strings"
)

// SelectHookFunc runs when a record is single-selected. It returns the
// replacement record and whether anything changed.
type SelectHookFunc func(rec Record) (Record, bool)

// MarkReadOnSelect zeroes a counter field (e.g. unreadCount) on selection.
func MarkReadOnSelect(field string) SelectHookFunc {
	return func(rec Record) (Record, bool) {
		n, ok := rec.Number(field)
		if !ok || n == 0 {
			return rec, false
		}
		return rec.With(field, 0), true
	}
}

// SetOnSelect writes a fixed value to field on selection, e.g. status=active.
func SetOnSelect(field string, value any) SelectHookFunc {
	return func(rec Record) (Record, bool) {
		if current, ok := rec.Value(field); ok && stringify(current) == stringify(value) {
			return rec, false
		}
		return rec.With(field, value), true
	}
}

// ChainSelectHooks runs hooks in order, threading the record through.
func ChainSelectHooks(hooks ...SelectHookFunc) SelectHookFunc {
	return func(rec Record) (Record, bool) {
		changed := false
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			next, ok := hook(rec)
			if ok {
				rec = next
				changed = true
			}
		}
		return rec, changed
	}
}

// ParseSelectHook resolves a declarative hook name such as
// "mark_read:unreadCount" or "set:status=active". Multiple hooks are joined with ";".
func ParseSelectHook(spec string) (SelectHookFunc, error) {
	var hooks []SelectHookFunc
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, arg, _ := strings.Cut(part, ":")
		switch strings.TrimSpace(name) {
		case "mark_read":
			arg = strings.TrimSpace(arg)
			if arg == "" {
				arg = "unreadCount"
			}
			hooks = append(hooks, MarkReadOnSelect(arg))
		case "set":
			field, value, ok := strings.Cut(arg, "=")
			if !ok || strings.TrimSpace(field) == "" {
				return nil, fmt.Errorf("listview: select hook %q expects set:field=value", part)
			}
			hooks = append(hooks, SetOnSelect(strings.TrimSpace(field), strings.TrimSpace(value)))
		default:
			return nil, fmt.Errorf("listview: unknown select hook %q", part)
		}
	}
	if len(hooks) == 0 {
		return nil, fmt.Errorf("listview: empty select hook")
	}
	if len(hooks) == 1 {
		return hooks[0], nil
	}
	return ChainSelectHooks(hooks...), nil
}
