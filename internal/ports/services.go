package ports

import (
	"context"
	"time"

	"github.com/taskmaster/taskgrid/internal/domain/entities"
)

// TaskService interface for task persistence as seen by the REST layer
type TaskService interface {
	SaveTask(ctx context.Context, id string, req SaveTaskRequest) (*TaskRecord, error)
	GetTask(ctx context.Context, id string) (*TaskRecord, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]*TaskRecord, int64, error)
}

// TaskSaver persists one sheet row; an empty id creates a task.
// It returns the id of the saved task.
type TaskSaver interface {
	Save(ctx context.Context, id string, req SaveTaskRequest) (string, error)
}

// TaskLister fetches task records for a sheet
type TaskLister interface {
	List(ctx context.Context, status string, limit int) ([]TaskRecord, error)
}

// Request/Response Types

// SaveTaskRequest is the save payload: a flat record of named date/time
// fields in local YYYY-MM-DDTHH:mm form plus the active derived offsets.
type SaveTaskRequest struct {
	Title            string            `json:"title" validate:"required,max=500"`
	Description      string            `json:"description" validate:"max=5000"`
	Status           string            `json:"status" validate:"omitempty,oneof=pending completed overdue"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	Deadline         string            `json:"deadline"`
	NotificationTime string            `json:"notification_time"`
	Notif1           string            `json:"notif1"`
	Notif2           string            `json:"notif2"`
	Notif3           string            `json:"notif3"`
	Notif4           string            `json:"notif4"`
	Notif5           string            `json:"notif5"`
	Notif6           string            `json:"notif6"`
	Notif7           string            `json:"notif7"`
	Notif8           string            `json:"notif8"`
	Offsets          map[string]string `json:"offsets"`
}

func (r *SaveTaskRequest) column(name string) *string {
	switch name {
	case entities.ColumnStartDate:
		return &r.StartDate
	case entities.ColumnEndDate:
		return &r.EndDate
	case entities.ColumnDeadline:
		return &r.Deadline
	case entities.ColumnNotificationTime:
		return &r.NotificationTime
	case entities.ColumnNotif1:
		return &r.Notif1
	case entities.ColumnNotif2:
		return &r.Notif2
	case entities.ColumnNotif3:
		return &r.Notif3
	case entities.ColumnNotif4:
		return &r.Notif4
	case entities.ColumnNotif5:
		return &r.Notif5
	case entities.ColumnNotif6:
		return &r.Notif6
	case entities.ColumnNotif7:
		return &r.Notif7
	case entities.ColumnNotif8:
		return &r.Notif8
	}
	return nil
}

// Value returns a date/time field by column name, "" for unknown columns
func (r *SaveTaskRequest) Value(name string) string {
	if p := r.column(name); p != nil {
		return *p
	}
	return ""
}

// SetValue sets a date/time field by column name
func (r *SaveTaskRequest) SetValue(name, value string) error {
	p := r.column(name)
	if p == nil {
		return entities.ErrUnknownColumn
	}
	*p = value
	return nil
}

// Values returns the non-empty date/time fields keyed by column
func (r *SaveTaskRequest) Values() map[string]string {
	out := make(map[string]string)
	for _, name := range entities.DateTimeColumns {
		if v := r.Value(name); v != "" {
			out[name] = v
		}
	}
	return out
}

// TaskRecord is a stored task in wire form
type TaskRecord struct {
	TaskID string `json:"task_id"`
	SaveTaskRequest
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveResponse is the body returned by the save endpoints
type SaveResponse struct {
	Status  string `json:"status"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	ResponseStatusSuccess = "success"
	ResponseStatusError   = "error"
)

// TaskListResponse wraps a page of task records
type TaskListResponse struct {
	Tasks []*TaskRecord `json:"tasks"`
	Total int64         `json:"total"`
}

// ApplyOffsetResponse is returned by the offset apply endpoint
type ApplyOffsetResponse struct {
	Base   string `json:"base"`
	Token  string `json:"token"`
	Result string `json:"result"`
	Label  string `json:"label"`
}

// Claims identify the caller of an authenticated request
type Claims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}
