package listview

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BulkState tracks one bulk operation invocation.
type BulkState string

const (
	BulkIdle                 BulkState = "idle"
	BulkRequested            BulkState = "requested"
	BulkAwaitingConfirmation BulkState = "awaiting_confirmation"
	BulkConfirmed            BulkState = "confirmed"
	BulkApplied              BulkState = "applied"
	BulkCancelled            BulkState = "cancelled"
)

// BulkRequest is a bulk operation invocation bound to the selection snapshot
// taken when it was requested.
type BulkRequest struct {
	ID          string         `json:"id"`
	ListCode    string         `json:"list_code"`
	Operation   BulkOperation  `json:"operation"`
	Data        map[string]any `json:"data,omitempty"`
	RecordIDs   []string       `json:"record_ids"`
	State       BulkState      `json:"state"`
	RequestedAt time.Time      `json:"requested_at"`
	Result      *BulkResult    `json:"result,omitempty"`
}

// NeedsConfirmation reports whether the request is parked awaiting confirmation.
func (r BulkRequest) NeedsConfirmation() bool {
	return r.State == BulkAwaitingConfirmation
}

// BulkResult summarizes an applied bulk operation.
type BulkResult struct {
	RequestID string    `json:"request_id"`
	ListCode  string    `json:"list_code"`
	Operation string    `json:"operation"`
	Effect    Effect    `json:"effect"`
	RecordIDs []string  `json:"record_ids"`
	Affected  int       `json:"affected"`
	Message   string    `json:"message"`
	Report    *Report   `json:"report,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
}

// Operations lists the bulk operations declared by the definition.
func (c *Controller) Operations() []BulkOperation {
	return append([]BulkOperation(nil), c.def.Operations...)
}

// RequestBulk validates an invocation against the current selection. Operations
// that need no confirmation are applied immediately and come back in the
// applied state with Result set; the rest are parked awaiting confirmation.
func (c *Controller) RequestBulk(ctx context.Context, code string, data map[string]any) (BulkRequest, error) {
	op, err := c.operation(code)
	if err != nil {
		return BulkRequest{}, err
	}
	if err := c.validateData(op, data); err != nil {
		return BulkRequest{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.selection) == 0 {
		return BulkRequest{}, ErrEmptySelection
	}
	req := &BulkRequest{
		ID:          c.nextID(),
		ListCode:    c.def.Code,
		Operation:   op,
		Data:        cloneData(data),
		RecordIDs:   append([]string(nil), c.selection...),
		State:       BulkRequested,
		RequestedAt: c.now(),
	}
	if op.RequiresConfirmation() {
		req.State = BulkAwaitingConfirmation
		c.pending[req.ID] = req
		return *req, nil
	}
	result, err := c.applyLocked(ctx, req)
	if err != nil {
		return BulkRequest{}, err
	}
	req.Result = &result
	return *req, nil
}

// ConfirmBulk applies a parked request to its selection snapshot. Records
// deleted since the request are skipped.
func (c *Controller) ConfirmBulk(ctx context.Context, requestID string) (BulkResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[requestID]
	if !ok {
		return BulkResult{}, fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}
	if req.State != BulkAwaitingConfirmation {
		return BulkResult{}, fmt.Errorf("%w: %s is %s", ErrRequestNotActive, requestID, req.State)
	}
	delete(c.pending, requestID)
	req.State = BulkConfirmed
	return c.applyLocked(ctx, req)
}

// CancelBulk drops a parked request without touching the collection.
func (c *Controller) CancelBulk(requestID string) (BulkRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[requestID]
	if !ok {
		return BulkRequest{}, fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}
	delete(c.pending, requestID)
	req.State = BulkCancelled
	return *req, nil
}

// PendingBulk returns a parked request.
func (c *Controller) PendingBulk(requestID string) (BulkRequest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	req, ok := c.pending[requestID]
	if !ok {
		return BulkRequest{}, false
	}
	return *req, true
}

// BulkHistory returns applied results, newest last.
func (c *Controller) BulkHistory() []BulkResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]BulkResult(nil), c.history...)
}

// ApplyBulk performs the operation on the current selection unconditionally;
// confirmation is left to the caller.
func (c *Controller) ApplyBulk(ctx context.Context, code string, data map[string]any) (BulkResult, error) {
	op, err := c.operation(code)
	if err != nil {
		return BulkResult{}, err
	}
	if err := c.validateData(op, data); err != nil {
		return BulkResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.selection) == 0 {
		return BulkResult{}, ErrEmptySelection
	}
	return c.applyLocked(ctx, &BulkRequest{
		ID:          c.nextID(),
		ListCode:    c.def.Code,
		Operation:   op,
		Data:        cloneData(data),
		RecordIDs:   append([]string(nil), c.selection...),
		State:       BulkConfirmed,
		RequestedAt: c.now(),
	})
}

func (c *Controller) operation(code string) (BulkOperation, error) {
	op, ok := c.def.Operation(code)
	if !ok {
		return BulkOperation{}, fmt.Errorf("%w: %s", ErrUnknownOperation, code)
	}
	return op, nil
}

func (c *Controller) validateData(op BulkOperation, data map[string]any) error {
	for _, key := range op.requiredKeys() {
		v, ok := data[key]
		if !ok || v == nil {
			return fmt.Errorf("%w: %s requires %q", ErrMissingData, op.Code, key)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s requires %q", ErrMissingData, op.Code, key)
		}
	}
	if c.dataValidator != nil && len(op.DataSchema) > 0 {
		if err := c.dataValidator.ValidateData(c.def, op, data); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingData, err)
		}
	}
	return nil
}

// applyLocked runs the effect. The collection and selection are only touched
// once the effect succeeded.
func (c *Controller) applyLocked(ctx context.Context, req *BulkRequest) (BulkResult, error) {
	targets := c.liveIDsLocked(req.RecordIDs)
	if len(targets) == 0 {
		return BulkResult{}, ErrEmptySelection
	}
	op := req.Operation
	result := BulkResult{
		RequestID: req.ID,
		ListCode:  c.def.Code,
		Operation: op.Code,
		Effect:    op.Effect,
		RecordIDs: targets,
		Affected:  len(targets),
	}
	switch op.Effect {
	case EffectExport:
		report, err := c.exportLocked(ctx, op, targets)
		if err != nil {
			return BulkResult{}, err
		}
		result.Report = &report
		result.Message = fmt.Sprintf("Exported %d records to %s", len(targets), report.Filename())
	case EffectDispatch:
		msg := EmailMessage{
			ListCode:   c.def.Code,
			RecordIDs:  targets,
			Recipients: c.recipientsLocked(targets),
			Subject:    stringify(req.Data["subject"]),
			Body:       stringify(req.Data["body"]),
		}
		if err := c.dispatcher.Send(ctx, msg); err != nil {
			return BulkResult{}, fmt.Errorf("listview: dispatch %s: %w", op.Code, err)
		}
		result.Message = fmt.Sprintf("Email sent to %d recipients", len(targets))
	case EffectSetField:
		value := op.Value
		if op.DataKey != "" {
			value = req.Data[op.DataKey]
		}
		if err := c.setFieldLocked(targets, op.Field, value); err != nil {
			return BulkResult{}, err
		}
		result.Message = fmt.Sprintf("Updated %s on %d records", op.Field, len(targets))
	case EffectDelete:
		c.deleteLocked(targets)
		result.Message = fmt.Sprintf("Deleted %d records", len(targets))
	default:
		return BulkResult{}, fmt.Errorf("%w: %s has effect %q", ErrUnknownOperation, op.Code, op.Effect)
	}
	req.State = BulkApplied
	result.AppliedAt = c.now()
	c.selection = nil
	c.history = append(c.history, result)
	if over := len(c.history) - c.historyLimit; over > 0 {
		c.history = append([]BulkResult(nil), c.history[over:]...)
	}
	return result, nil
}

func (c *Controller) liveIDsLocked(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if c.records.indexOf(id) >= 0 {
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) exportLocked(ctx context.Context, op BulkOperation, ids []string) (Report, error) {
	format := op.Format
	if format == "" {
		format = c.def.Report.Format
	}
	report := NewReport(c.def, c.selectedLocked(ids), c.now())
	if format != "" {
		report.Format = format
	}
	if err := c.exporter.Export(ctx, report); err != nil {
		return Report{}, fmt.Errorf("listview: export %s: %w", c.def.Code, err)
	}
	return report, nil
}

func (c *Controller) recipientsLocked(ids []string) []string {
	field := c.def.RecipientField
	if field == "" {
		return nil
	}
	var out []string
	for _, rec := range c.selectedLocked(ids) {
		if addr := rec.String(field); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func (c *Controller) setFieldLocked(ids []string, field string, value any) error {
	replaced := make(map[int]Record, len(ids))
	for _, id := range ids {
		idx := c.records.indexOf(id)
		next := c.records.items[idx].With(field, value)
		if err := c.records.validate(c.def, next); err != nil {
			return err
		}
		replaced[idx] = next
	}
	for idx, rec := range replaced {
		c.records.items[idx] = rec
	}
	return nil
}

func (c *Controller) deleteLocked(ids []string) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := c.records.items[:0]
	for _, rec := range c.records.items {
		if _, ok := drop[rec.ID]; !ok {
			kept = append(kept, rec)
		}
	}
	c.records.items = kept
	for id, req := range c.pending {
		if len(c.liveIDsLocked(req.RecordIDs)) == 0 {
			delete(c.pending, id)
		}
	}
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
