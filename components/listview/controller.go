package listview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultHistoryLimit = 32

// RecordValidator validates records against a definition before they enter a collection.
type RecordValidator interface {
	ValidateRecord(def Definition, rec Record) error
}

// DataValidator validates auxiliary bulk-operation data.
type DataValidator interface {
	ValidateData(def Definition, op BulkOperation, data map[string]any) error
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithExporter sets the collaborator receiving export reports.
func WithExporter(exporter Exporter) ControllerOption {
	return func(c *Controller) {
		if exporter != nil {
			c.exporter = exporter
		}
	}
}

// WithEmailDispatcher sets the collaborator receiving email payloads.
func WithEmailDispatcher(dispatcher EmailDispatcher) ControllerOption {
	return func(c *Controller) {
		if dispatcher != nil {
			c.dispatcher = dispatcher
		}
	}
}

// WithRecordValidator validates records on Load and after set_field operations.
func WithRecordValidator(v RecordValidator) ControllerOption {
	return func(c *Controller) {
		c.records.validator = v
	}
}

// WithDataValidator validates bulk data against operation schemas.
func WithDataValidator(v DataValidator) ControllerOption {
	return func(c *Controller) {
		c.dataValidator = v
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRequestIDs overrides the bulk request id generator.
func WithRequestIDs(next func() string) ControllerOption {
	return func(c *Controller) {
		if next != nil {
			c.nextID = next
		}
	}
}

// WithHistoryLimit caps how many bulk results are retained.
func WithHistoryLimit(limit int) ControllerOption {
	return func(c *Controller) {
		if limit > 0 {
			c.historyLimit = limit
		}
	}
}

// Controller owns one list's collection, filters, sort key, and selection, and
// derives the read-only View from them. The selection is kept a subset of the
// visible items: records hidden by a filter change are dropped from it.
type Controller struct {
	mu  sync.RWMutex
	def Definition

	records   collection
	filters   FilterState
	sortKey   SortKey
	selection []string

	pending      map[string]*BulkRequest
	history      []BulkResult
	historyLimit int

	exporter      Exporter
	dispatcher    EmailDispatcher
	dataValidator DataValidator
	onSelect      SelectHookFunc
	now           func() time.Time
	nextID        func() string
}

type collection struct {
	items     []Record
	validator RecordValidator
}

// NewController builds an empty controller for the definition.
func NewController(def Definition, opts ...ControllerOption) *Controller {
	def.normalize()
	c := &Controller{
		def:          def,
		filters:      newFilterState(),
		pending:      map[string]*BulkRequest{},
		historyLimit: defaultHistoryLimit,
		exporter:     discardExporter{},
		dispatcher:   discardDispatcher{},
		onSelect:     def.selectHook(),
		now:          time.Now,
		nextID:       uuid.NewString,
	}
	if key, ok := def.SortKey(def.DefaultSort); ok {
		c.sortKey = key
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Definition returns the list definition driving the controller.
func (c *Controller) Definition() Definition {
	return c.def
}

// Load replaces the collection. IDs must be non-empty and unique. Selection and
// pending bulk requests are reset; filters and sort are kept.
func (c *Controller) Load(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("%w: record at index %d has no id", ErrInvalidRecord, i)
		}
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if err := c.records.validate(c.def, rec); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records.items = cloneRecords(records)
	c.selection = nil
	c.pending = map[string]*BulkRequest{}
	return nil
}

func (col collection) validate(def Definition, rec Record) error {
	if col.validator == nil {
		return nil
	}
	if err := col.validator.ValidateRecord(def, rec); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRecord, rec.ID, err)
	}
	return nil
}

func (col collection) indexOf(id string) int {
	for i, rec := range col.items {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// SetFilter replaces the constraint for field. An empty or "all" value clears it.
func (c *Controller) SetFilter(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.filters.set(c.def.Schema, field, value); err != nil {
		return err
	}
	c.pruneSelectionLocked()
	return nil
}

// SetFilterFunc installs a named predicate constraint; a nil predicate removes it.
func (c *Controller) SetFilterFunc(name string, pred Predicate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pred == nil {
		delete(c.filters.predicates, name)
	} else {
		c.filters.predicates[name] = pred
	}
	c.pruneSelectionLocked()
}

// ClearFilters removes every constraint.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = newFilterState()
}

// Filters returns the active value constraints.
func (c *Controller) Filters() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters.Values()
}

// SetSort replaces the sort key. An empty code restores insertion order.
func (c *Controller) SetSort(code string) error {
	if code == "" {
		c.mu.Lock()
		c.sortKey = SortKey{}
		c.mu.Unlock()
		return nil
	}
	key, ok := c.def.SortKey(code)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSortKey, code)
	}
	c.mu.Lock()
	c.sortKey = key
	c.mu.Unlock()
	return nil
}

// Sort returns the active sort key code.
func (c *Controller) Sort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortKey.Code
}

// VisibleItems returns the filtered, sorted records as a fresh slice.
func (c *Controller) VisibleItems() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visibleLocked()
}

func (c *Controller) visibleLocked() []Record {
	out := make([]Record, 0, len(c.records.items))
	for _, rec := range c.records.items {
		if c.filters.matches(c.def.Schema, rec) {
			out = append(out, rec.Clone())
		}
	}
	sortRecords(out, c.sortKey)
	return out
}

func (c *Controller) visibleSetLocked() map[string]struct{} {
	set := make(map[string]struct{}, len(c.records.items))
	for _, rec := range c.records.items {
		if c.filters.matches(c.def.Schema, rec) {
			set[rec.ID] = struct{}{}
		}
	}
	return set
}

func (c *Controller) pruneSelectionLocked() {
	if len(c.selection) == 0 {
		return
	}
	visible := c.visibleSetLocked()
	kept := c.selection[:0]
	for _, id := range c.selection {
		if _, ok := visible[id]; ok {
			kept = append(kept, id)
		}
	}
	c.selection = kept
}

// ToggleSelect adds a visible id to the selection or removes a selected one.
// Ids that are hidden or unknown return ErrNotVisible.
func (c *Controller) ToggleSelect(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, selected := range c.selection {
		if selected == id {
			c.selection = append(c.selection[:i], c.selection[i+1:]...)
			return nil
		}
	}
	if _, ok := c.visibleSetLocked()[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotVisible, id)
	}
	c.selection = append(c.selection, id)
	return nil
}

// SingleSelect replaces the selection with id and runs the definition's
// on-select hook, which may replace the record (e.g. clearing unreadCount).
// It returns the selected record and whether the hook changed it.
func (c *Controller) SingleSelect(id string) (Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.visibleSetLocked()[id]; !ok {
		return Record{}, false, fmt.Errorf("%w: %s", ErrNotVisible, id)
	}
	c.selection = []string{id}
	idx := c.records.indexOf(id)
	rec := c.records.items[idx]
	if c.onSelect == nil {
		return rec.Clone(), false, nil
	}
	next, changed := c.onSelect(rec.Clone())
	if !changed {
		return rec.Clone(), false, nil
	}
	next.ID = id
	if err := c.records.validate(c.def, next); err != nil {
		return rec.Clone(), false, err
	}
	c.records.items[idx] = next
	c.pruneSelectionLocked()
	return next.Clone(), true, nil
}

// SelectAll selects exactly the currently visible ids.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	visible := c.visibleLocked()
	c.selection = make([]string, 0, len(visible))
	for _, rec := range visible {
		c.selection = append(c.selection, rec.ID)
	}
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = nil
}

// SelectedIDs returns the selection in selection order.
func (c *Controller) SelectedIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.selection...)
}

// SelectedItems returns the selected records in visible order.
func (c *Controller) SelectedItems() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedLocked(c.selection)
}

func (c *Controller) selectedLocked(ids []string) []Record {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	items := make([]Record, 0, len(ids))
	for _, rec := range c.records.items {
		if _, ok := want[rec.ID]; ok {
			items = append(items, rec.Clone())
		}
	}
	sortRecords(items, c.sortKey)
	return items
}

// IsSelected reports whether id is selected.
func (c *Controller) IsSelected(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return containsString(c.selection, id)
}

// Stats aggregates the full collection; filters never affect it.
func (c *Controller) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ComputeStats(c.def.Stats, c.records.items)
}

// VisibleStats aggregates only the visible records.
func (c *Controller) VisibleStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ComputeStats(c.def.Stats, c.visibleLocked())
}

// Records returns a copy of the full collection in insertion order.
func (c *Controller) Records() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRecords(c.records.items)
}

// Get returns a record by id regardless of visibility.
func (c *Controller) Get(id string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := c.records.indexOf(id)
	if idx < 0 {
		return Record{}, false
	}
	return c.records.items[idx].Clone(), true
}

// Len returns the collection size.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records.items)
}

// View derives the presentation state in one consistent snapshot.
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	visible := c.visibleLocked()
	selected := append([]string(nil), c.selection...)
	return View{
		Code:         c.def.Code,
		Items:        visible,
		Selected:     selected,
		AllSelected:  len(visible) > 0 && len(selected) == len(visible),
		Filters:      c.filters.Values(),
		Sort:         c.sortKey.Code,
		Stats:        ComputeStats(c.def.Stats, c.records.items),
		VisibleCount: len(visible),
		TotalCount:   len(c.records.items),
	}
}

type discardExporter struct{}

func (discardExporter) Export(context.Context, Report) error { return nil }

type discardDispatcher struct{}

func (discardDispatcher) Send(context.Context, EmailMessage) error { return nil }
