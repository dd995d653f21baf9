package listview

import (
	"fmt"
	"strings"
)

// Effect enumerates what a bulk operation does to the selection.
type Effect string

const (
	// EffectExport hands a report of the selection to the Exporter.
	EffectExport Effect = "export"
	// EffectDispatch hands an email payload to the EmailDispatcher.
	EffectDispatch Effect = "dispatch"
	// EffectSetField replaces a field on every selected record.
	EffectSetField Effect = "set_field"
	// EffectDelete removes the selected records from the collection.
	EffectDelete Effect = "delete"
)

// BulkOperation is a named action applied to every selected record. For
// set_field the written value comes from data[DataKey] when DataKey is set,
// otherwise Value is written.
type BulkOperation struct {
	Code        string         `json:"code" yaml:"code"`
	Label       string         `json:"label,omitempty" yaml:"label,omitempty"`
	Effect      Effect         `json:"effect" yaml:"effect"`
	Destructive bool           `json:"destructive,omitempty" yaml:"destructive,omitempty"`
	Confirm     bool           `json:"confirm,omitempty" yaml:"confirm,omitempty"`
	Required    []string       `json:"required,omitempty" yaml:"required,omitempty"`
	DataSchema  map[string]any `json:"data_schema,omitempty" yaml:"data_schema,omitempty"`
	Field       string         `json:"field,omitempty" yaml:"field,omitempty"`
	DataKey     string         `json:"data_key,omitempty" yaml:"data_key,omitempty"`
	Value       any            `json:"value,omitempty" yaml:"value,omitempty"`
	Format      string         `json:"format,omitempty" yaml:"format,omitempty"`
}

// RequiresConfirmation reports whether presentation must confirm before applying.
func (op BulkOperation) RequiresConfirmation() bool {
	return op.Destructive || op.Confirm
}

// RequiresData reports whether the operation needs auxiliary input.
func (op BulkOperation) RequiresData() bool {
	return len(op.Required) > 0 || op.DataKey != ""
}

func (op BulkOperation) requiredKeys() []string {
	keys := append([]string(nil), op.Required...)
	if op.DataKey != "" && !containsString(keys, op.DataKey) {
		keys = append(keys, op.DataKey)
	}
	return keys
}

// ReportConfig names the export report produced by a list.
type ReportConfig struct {
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Definition declares a list view. SelectHook names a built-in single-select
// hook (see ParseSelectHook); OnSelect takes precedence when set in code.
type Definition struct {
	Code                 string            `json:"code" yaml:"code"`
	Name                 string            `json:"name" yaml:"name"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Schema               Schema            `json:"schema" yaml:"schema"`
	SortKeys             []SortKey         `json:"sort_keys,omitempty" yaml:"sort_keys,omitempty"`
	DefaultSort          string            `json:"default_sort,omitempty" yaml:"default_sort,omitempty"`
	Operations           []BulkOperation   `json:"operations,omitempty" yaml:"operations,omitempty"`
	Stats                StatsConfig       `json:"stats,omitempty" yaml:"stats,omitempty"`
	RecordSchema         map[string]any    `json:"record_schema,omitempty" yaml:"record_schema,omitempty"`
	Report               ReportConfig      `json:"report,omitempty" yaml:"report,omitempty"`
	RecipientField       string            `json:"recipient_field,omitempty" yaml:"recipient_field,omitempty"`
	SelectHook           string            `json:"select_hook,omitempty" yaml:"select_hook,omitempty"`
	OnSelect             SelectHookFunc    `json:"-" yaml:"-"`
}

// SortKey looks up a declared sort key by code.
func (d Definition) SortKey(code string) (SortKey, bool) {
	for _, k := range d.SortKeys {
		if k.Code == code {
			if k.Direction == "" {
				k.Direction = SortAsc
			}
			return k, true
		}
	}
	return SortKey{}, false
}

// Operation looks up a bulk operation by code.
func (d Definition) Operation(code string) (BulkOperation, bool) {
	for _, op := range d.Operations {
		if op.Code == code {
			return op, true
		}
	}
	return BulkOperation{}, false
}

// Validate checks the definition for internal consistency.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Code) == "" {
		return fmt.Errorf("listview: definition code is required")
	}
	seen := map[string]struct{}{}
	for _, f := range d.Schema.Fields {
		if f.Name == "" {
			return fmt.Errorf("listview: definition %s has a field without name", d.Code)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("listview: definition %s duplicates field %s", d.Code, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	for _, k := range d.SortKeys {
		if k.Code == "" || k.Field == "" {
			return fmt.Errorf("listview: definition %s has incomplete sort key %+v", d.Code, k)
		}
		if k.Direction != "" && k.Direction != SortAsc && k.Direction != SortDesc {
			return fmt.Errorf("listview: definition %s sort key %s has invalid direction %q", d.Code, k.Code, k.Direction)
		}
	}
	if d.DefaultSort != "" {
		if _, ok := d.SortKey(d.DefaultSort); !ok {
			return fmt.Errorf("%w: %s default %s", ErrUnknownSortKey, d.Code, d.DefaultSort)
		}
	}
	ops := map[string]struct{}{}
	for _, op := range d.Operations {
		if op.Code == "" {
			return fmt.Errorf("listview: definition %s has an operation without code", d.Code)
		}
		if _, dup := ops[op.Code]; dup {
			return fmt.Errorf("listview: definition %s duplicates operation %s", d.Code, op.Code)
		}
		ops[op.Code] = struct{}{}
		switch op.Effect {
		case EffectExport, EffectDispatch, EffectDelete:
		case EffectSetField:
			if op.Field == "" {
				return fmt.Errorf("listview: operation %s.%s requires a target field", d.Code, op.Code)
			}
		default:
			return fmt.Errorf("listview: operation %s.%s has unknown effect %q", d.Code, op.Code, op.Effect)
		}
	}
	if d.SelectHook != "" {
		if _, err := ParseSelectHook(d.SelectHook); err != nil {
			return err
		}
	}
	return nil
}

// NameForLocale returns the display name for the locale with fallback to Name.
func (d Definition) NameForLocale(locale string) string {
	return ResolveLocalizedValue(d.NameLocalized, locale, d.Name)
}

// DescriptionForLocale returns the localized description if available.
func (d Definition) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(d.DescriptionLocalized, locale, d.Description)
}

func (d *Definition) normalize() {
	d.NameLocalized = normalizeLocaleMap(d.NameLocalized)
	d.DescriptionLocalized = normalizeLocaleMap(d.DescriptionLocalized)
	for i := range d.Schema.Fields {
		d.Schema.Fields[i].LabelLocalized = normalizeLocaleMap(d.Schema.Fields[i].LabelLocalized)
	}
}

func (d Definition) selectHook() SelectHookFunc {
	if d.OnSelect != nil {
		return d.OnSelect
	}
	if d.SelectHook == "" {
		return nil
	}
	hook, err := ParseSelectHook(d.SelectHook)
	if err != nil {
		return nil
	}
	return hook
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
