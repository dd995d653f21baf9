package listview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Predicate is a custom filter constraint evaluated against each record.
type Predicate func(Record) bool

// FilterState holds the active constraints. All constraints are conjunctive.
type FilterState struct {
	values     map[string]string
	predicates map[string]Predicate
}

func newFilterState() FilterState {
	return FilterState{
		values:     map[string]string{},
		predicates: map[string]Predicate{},
	}
}

// Values returns a copy of the value constraints.
func (f FilterState) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Active reports whether any constraint is set.
func (f FilterState) Active() bool {
	return len(f.values) > 0 || len(f.predicates) > 0
}

func (f FilterState) clone() FilterState {
	out := newFilterState()
	for k, v := range f.values {
		out.values[k] = v
	}
	for k, p := range f.predicates {
		out.predicates[k] = p
	}
	return out
}

// set validates and stores a constraint. Empty or "all" clears the field.
func (f *FilterState) set(schema Schema, field, value string) error {
	def, ok := schema.Field(field)
	if !ok || !def.filterable() {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, FilterAll) {
		delete(f.values, field)
		return nil
	}
	canonical, ok := def.canonical(value)
	if !ok {
		return fmt.Errorf("%w: %s=%q", ErrInvalidFilterValue, field, value)
	}
	f.values[field] = canonical
	return nil
}

func (f FieldDef) filterable() bool {
	return f.Filterable || len(f.SearchFields) > 0
}

func (f FilterState) matches(schema Schema, rec Record) bool {
	for field, value := range f.values {
		def, ok := schema.Field(field)
		if !ok {
			return false
		}
		if !matchField(def, rec, value) {
			return false
		}
	}
	for _, pred := range f.predicates {
		if pred != nil && !pred(rec) {
			return false
		}
	}
	return true
}

func matchField(def FieldDef, rec Record, value string) bool {
	if len(def.SearchFields) > 0 {
		for _, name := range def.SearchFields {
			if matchValue(def.Match, rec, name, value) {
				return true
			}
		}
		return false
	}
	return matchValue(def.Match, rec, def.Name, value)
}

func matchValue(mode MatchMode, rec Record, field, value string) bool {
	switch mode {
	case MatchExact:
		raw, ok := rec.Value(field)
		if !ok {
			return false
		}
		if n, isNum := toFloat(raw); isNum {
			if want, err := parseFloat(value); err == nil {
				return n == want
			}
		}
		return stringify(raw) == value
	case MatchFuzzy:
		text := rec.String(field)
		if text == "" {
			return false
		}
		return len(fuzzy.Find(value, []string{text})) > 0
	case MatchAny:
		raw, _ := rec.Value(field)
		for _, tag := range toStrings(raw) {
			if strings.EqualFold(tag, value) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(strings.ToLower(rec.String(field)), strings.ToLower(value))
	}
}

func parseFloat(value string) (float64, error) {
	f, ok := toFloat(value)
	if !ok {
		return 0, fmt.Errorf("listview: %q is not numeric", value)
	}
	return f, nil
}

// FilterFields returns the filterable field names in declaration order.
func FilterFields(schema Schema) []string {
	var out []string
	for _, f := range schema.Fields {
		if f.filterable() {
			out = append(out, f.Name)
		}
	}
	return out
}

// FacetValues collects the distinct values of a field across records, sorted.
// Enum fields return their declared values.
func FacetValues(schema Schema, records []Record, field string) []string {
	def, ok := schema.Field(field)
	if !ok {
		return nil
	}
	if def.Kind == KindEnum && len(def.Values) > 0 {
		return append([]string(nil), def.Values...)
	}
	seen := map[string]struct{}{}
	for _, rec := range records {
		raw, ok := rec.Value(field)
		if !ok {
			continue
		}
		for _, v := range toStrings(raw) {
			seen[v] = struct{}{}
		}
		if def.Kind != KindTags {
			if s := stringify(raw); s != "" {
				seen[s] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
