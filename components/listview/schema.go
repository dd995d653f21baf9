package listview

import "strings"

// FieldKind enumerates the value kinds a list field may carry.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindEnum   FieldKind = "enum"
	KindNumber FieldKind = "number"
	KindTime   FieldKind = "time"
	KindTags   FieldKind = "tags"
)

// MatchMode controls how a filter value is compared against a record field.
type MatchMode string

const (
	// MatchContains performs a case-insensitive substring match.
	MatchContains MatchMode = "contains"
	// MatchExact compares by equality.
	MatchExact MatchMode = "exact"
	// MatchFuzzy accepts records whose field fuzzy-matches the pattern.
	MatchFuzzy MatchMode = "fuzzy"
	// MatchAny accepts records where any tag equals the value.
	MatchAny MatchMode = "any"
)

// FilterAll is the sentinel filter value meaning "no constraint".
const FilterAll = "all"

// FieldDef describes one field of a list schema. A field with SearchFields is
// virtual: filtering on it matches any of the listed fields.
type FieldDef struct {
	Name           string            `json:"name" yaml:"name"`
	Label          string            `json:"label,omitempty" yaml:"label,omitempty"`
	Kind           FieldKind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Values         []string          `json:"values,omitempty" yaml:"values,omitempty"`
	Match          MatchMode         `json:"match,omitempty" yaml:"match,omitempty"`
	Filterable     bool              `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	SearchFields   []string          `json:"search_fields,omitempty" yaml:"search_fields,omitempty"`
	LabelLocalized map[string]string `json:"label_localized,omitempty" yaml:"label_localized,omitempty"`
}

// Schema lists the fields a definition exposes.
type Schema struct {
	Fields []FieldDef `json:"fields" yaml:"fields"`
}

// Field looks up a field by name.
func (s Schema) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.normalized(), true
		}
	}
	return FieldDef{}, false
}

// Columns returns the non-virtual field names in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if len(f.SearchFields) > 0 {
			continue
		}
		cols = append(cols, f.Name)
	}
	return cols
}

func (f FieldDef) normalized() FieldDef {
	if f.Kind == "" {
		f.Kind = KindText
	}
	if f.Match == "" {
		switch f.Kind {
		case KindEnum, KindNumber, KindTime:
			f.Match = MatchExact
		case KindTags:
			f.Match = MatchAny
		default:
			f.Match = MatchContains
		}
	}
	return f
}

// canonical returns the declared spelling of an enum value. Non-enum fields
// accept any value as given.
func (f FieldDef) canonical(value string) (string, bool) {
	if f.Kind != KindEnum || len(f.Values) == 0 {
		return value, true
	}
	for _, v := range f.Values {
		if strings.EqualFold(v, value) {
			return v, true
		}
	}
	return "", false
}

// LabelForLocale returns the localized label with fallback to Label then Name.
func (f FieldDef) LabelForLocale(locale string) string {
	fallback := f.Label
	if fallback == "" {
		fallback = f.Name
	}
	return ResolveLocalizedValue(f.LabelLocalized, locale, fallback)
}

// SortDirection orders a sort key.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKey is an enumerated ordering selector declared per definition.
type SortKey struct {
	Code      string        `json:"code" yaml:"code"`
	Label     string        `json:"label,omitempty" yaml:"label,omitempty"`
	Field     string        `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction,omitempty" yaml:"direction,omitempty"`
}
