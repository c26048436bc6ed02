// Package sheet is the controller behind the task grid: rows of date/time
// cells, derived-offset links between neighbouring cells, dirty tracking and
// the sequential batch save.
package sheet

import (
	"fmt"

	"github.com/taskmaster/taskgrid/internal/domain/entities"
	"github.com/taskmaster/taskgrid/internal/ports"
)

// Row is one task in the grid. Values and Offsets are keyed by chain field.
type Row struct {
	TaskID      string            `json:"task_id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status,omitempty"`
	Values      map[string]string `json:"values"`
	Offsets     map[string]string `json:"offsets,omitempty"`
	Dirty       bool              `json:"dirty,omitempty"`
}

// NewRow returns an empty, clean row
func NewRow() *Row {
	return &Row{
		Values:  make(map[string]string),
		Offsets: make(map[string]string),
	}
}

// RowFromRecord converts a fetched task into a clean row
func RowFromRecord(rec ports.TaskRecord) *Row {
	r := NewRow()
	r.TaskID = rec.TaskID
	r.Title = rec.Title
	r.Description = rec.Description
	r.Status = rec.Status
	for k, v := range rec.Values() {
		r.Values[k] = v
	}
	for k, v := range rec.Offsets {
		r.Offsets[k] = v
	}
	return r
}

func (r *Row) ensureMaps() {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	if r.Offsets == nil {
		r.Offsets = make(map[string]string)
	}
}

func (r *Row) clone() *Row {
	cp := *r
	cp.Values = make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		cp.Values[k] = v
	}
	cp.Offsets = make(map[string]string, len(r.Offsets))
	for k, v := range r.Offsets {
		cp.Offsets[k] = v
	}
	return &cp
}

func (r *Row) set(field, value string) {
	if value == "" {
		delete(r.Values, field)
		return
	}
	r.Values[field] = value
}

// Request builds the save payload: every date/time field plus the offsets
// still attached to the row. A value or offset in a field the server has no
// column for is an error, so it is never dropped silently.
func (r *Row) Request() (ports.SaveTaskRequest, error) {
	req := ports.SaveTaskRequest{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Offsets:     make(map[string]string, len(r.Offsets)),
	}
	for field, value := range r.Values {
		if err := req.SetValue(field, value); err != nil {
			return ports.SaveTaskRequest{}, fmt.Errorf("%w: %q", err, field)
		}
	}
	for field, token := range r.Offsets {
		if !entities.IsDateTimeColumn(field) {
			return ports.SaveTaskRequest{}, fmt.Errorf("%w: %q", entities.ErrUnknownColumn, field)
		}
		req.Offsets[field] = token
	}
	return req, nil
}
