package sheet

import (
	"errors"
	"fmt"

	"github.com/taskmaster/taskgrid/internal/domain/offset"
	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
)

var (
	ErrPredecessorEmpty = errors.New("predecessor has no value yet")
	ErrClipboardEmpty   = errors.New("nothing to paste")
	ErrRowOutOfRange    = errors.New("row out of range")
	ErrUnknownField     = errors.New("unknown date/time field")
	ErrNothingToSave    = errors.New("no changes to save")
)

// Sheet holds the grid rows and keeps derived offsets honest as cells change.
type Sheet struct {
	engine *offset.Engine
	logger *logger.Logger
	rows   []*Row
}

// New creates a sheet over rows. A nil logger discards.
func New(engine *offset.Engine, log *logger.Logger, rows ...*Row) *Sheet {
	if log == nil {
		log = logger.Nop()
	}
	kept := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		r.ensureMaps()
		kept = append(kept, r)
	}
	return &Sheet{
		engine: engine,
		logger: log.WithComponent("sheet"),
		rows:   kept,
	}
}

// Rows returns the rows in display order. The slice must not be modified.
func (s *Sheet) Rows() []*Row { return s.rows }

func (s *Sheet) Len() int { return len(s.rows) }

// Engine returns the offset engine the sheet computes with.
func (s *Sheet) Engine() *offset.Engine { return s.engine }

// Append adds a row at the bottom of the sheet and returns its index.
func (s *Sheet) Append(r *Row) int {
	if r == nil {
		r = NewRow()
	}
	r.ensureMaps()
	s.rows = append(s.rows, r)
	return len(s.rows) - 1
}

// Row returns the row at index i.
func (s *Sheet) Row(i int) (*Row, error) {
	if i < 0 || i >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, i, len(s.rows))
	}
	return s.rows[i], nil
}

func (s *Sheet) cell(i int, field string) (*Row, error) {
	r, err := s.Row(i)
	if err != nil {
		return nil, err
	}
	if !s.engine.Chain().Contains(field) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return r, nil
}

// Value returns the current value of a cell.
func (s *Sheet) Value(i int, field string) (string, error) {
	r, err := s.cell(i, field)
	if err != nil {
		return "", err
	}
	return r.Values[field], nil
}

// Annotation returns the "derived from" label of a cell while it carries an offset.
func (s *Sheet) Annotation(i int, field string) (string, bool) {
	r, err := s.cell(i, field)
	if err != nil {
		return "", false
	}
	token, ok := r.Offsets[field]
	if !ok {
		return "", false
	}
	return s.engine.Label(token), true
}

// recheck drops the stored offset of field unless predecessor+offset still
// equals the field's value.
func (s *Sheet) recheck(r *Row, field string) {
	token, ok := r.Offsets[field]
	if !ok {
		return
	}
	if prev, ok := s.engine.Previous(field); ok && s.engine.Consistent(r.Values[prev], token, r.Values[field]) {
		return
	}
	delete(r.Offsets, field)
	s.logger.Debugw("derived offset cleared", "task_id", r.TaskID, "field", field, "offset", token)
}

func (s *Sheet) recheckNext(r *Row, field string) {
	if next, ok := s.engine.Chain().Next(field); ok {
		s.recheck(r, next)
	}
}

// SetValue records a direct edit of a cell. A stored offset survives only if
// the new value is still exactly predecessor+offset; the same holds for the
// successor cell, which is derived from this one.
func (s *Sheet) SetValue(i int, field, value string) error {
	r, err := s.cell(i, field)
	if err != nil {
		return err
	}
	if r.Values[field] == value {
		return nil
	}
	r.set(field, value)
	s.recheck(r, field)
	s.recheckNext(r, field)
	r.Dirty = true
	return nil
}

// Touch fills an empty cell with the current time, as opening the picker on
// an empty field does. It returns the cell value.
func (s *Sheet) Touch(i int, field string) (string, error) {
	r, err := s.cell(i, field)
	if err != nil {
		return "", err
	}
	if r.Values[field] != "" {
		return r.Values[field], nil
	}
	now := s.engine.Now()
	if err := s.SetValue(i, field, now); err != nil {
		return "", err
	}
	return now, nil
}

// ApplyQuickAction sets a cell to its predecessor's value shifted by token
// and remembers the link. Nothing changes when the token is invalid or the
// predecessor is empty.
func (s *Sheet) ApplyQuickAction(i int, field, token string) (string, error) {
	r, err := s.cell(i, field)
	if err != nil {
		return "", err
	}
	if _, err := offset.Parse(token); err != nil {
		return "", err
	}

	prev, ok := s.engine.Previous(field)
	if !ok || r.Values[prev] == "" {
		return "", fmt.Errorf("%w: %s", ErrPredecessorEmpty, field)
	}

	value, err := s.engine.Derive(r.Values[prev], token)
	if err != nil {
		return "", fmt.Errorf("apply %s to %s: %w", token, prev, err)
	}

	r.set(field, value)
	r.Offsets[field] = token
	s.recheckNext(r, field)
	r.Dirty = true

	s.logger.Debugw("quick action applied", "task_id", r.TaskID, "field", field, "offset", token, "value", value)
	return value, nil
}

// ApplyCustomOffset is ApplyQuickAction for the custom amount/unit form.
func (s *Sheet) ApplyCustomOffset(i int, field string, amount int, unit string) (string, error) {
	token, err := offset.CustomToken(amount, unit)
	if err != nil {
		return "", err
	}
	return s.ApplyQuickAction(i, field, token)
}

// paste writes a value that did not come from the offset engine.
func (s *Sheet) paste(r *Row, field, value string) {
	r.set(field, value)
	delete(r.Offsets, field)
	s.recheckNext(r, field)
	r.Dirty = true
}

// Copy puts a cell value on the clipboard.
func (s *Sheet) Copy(cb *Clipboard, i int, field string) error {
	r, err := s.cell(i, field)
	if err != nil {
		return err
	}
	cb.single = r.Values[field]
	return nil
}

// Paste writes the clipboard value into a cell and drops its offset.
func (s *Sheet) Paste(cb *Clipboard, i int, field string) error {
	r, err := s.cell(i, field)
	if err != nil {
		return err
	}
	if cb.single == "" {
		return ErrClipboardEmpty
	}
	s.paste(r, field, cb.single)
	return nil
}

// CopyColumn copies one value per row ("" for empty cells) and returns how many.
func (s *Sheet) CopyColumn(cb *Clipboard, field string) (int, error) {
	if !s.engine.Chain().Contains(field) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	values := make([]string, len(s.rows))
	for i, r := range s.rows {
		values[i] = r.Values[field]
	}
	cb.column = values
	cb.columnField = field
	return len(values), nil
}

// PasteColumn writes copied column values top-down into field. Empty copied
// values and rows past the copied length are left alone. It returns the
// number of values on the clipboard.
func (s *Sheet) PasteColumn(cb *Clipboard, field string) (int, error) {
	if !s.engine.Chain().Contains(field) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if cb.column == nil {
		return 0, ErrClipboardEmpty
	}
	for i, r := range s.rows {
		if i >= len(cb.column) {
			break
		}
		if cb.column[i] == "" {
			continue
		}
		s.paste(r, field, cb.column[i])
	}
	return len(cb.column), nil
}

// DuplicateRow inserts an unsaved copy of row i directly below it and returns
// the new index. The copy has no task id and no offsets.
func (s *Sheet) DuplicateRow(i int) (int, error) {
	src, err := s.Row(i)
	if err != nil {
		return 0, err
	}
	cp := src.clone()
	cp.TaskID = ""
	cp.Offsets = make(map[string]string)
	if cp.Title != "" {
		cp.Title += " - Copy"
	}
	cp.Dirty = true

	s.rows = append(s.rows, nil)
	copy(s.rows[i+2:], s.rows[i+1:])
	s.rows[i+1] = cp
	return i + 1, nil
}

// SetTitle edits the title of row i.
func (s *Sheet) SetTitle(i int, title string) error {
	r, err := s.Row(i)
	if err != nil {
		return err
	}
	if r.Title != title {
		r.Title = title
		r.Dirty = true
	}
	return nil
}

// SetStatus edits the status of row i.
func (s *Sheet) SetStatus(i int, status string) error {
	r, err := s.Row(i)
	if err != nil {
		return err
	}
	if r.Status != status {
		r.Status = status
		r.Dirty = true
	}
	return nil
}

// DirtyRows returns the indexes of rows with unsaved edits.
func (s *Sheet) DirtyRows() []int {
	var out []int
	for i, r := range s.rows {
		if r.Dirty {
			out = append(out, i)
		}
	}
	return out
}

func (s *Sheet) DirtyCount() int { return len(s.DirtyRows()) }
