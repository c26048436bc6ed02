package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrUnknownColumn    = errors.New("unknown date/time column")
	ErrInvalidTimestamp = errors.New("invalid date/time value")
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusOverdue   TaskStatus = "overdue"
)

// IsValid reports whether s is one of the known task statuses
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusOverdue:
		return true
	}
	return false
}

// Date/time columns of a task, in table order.
const (
	ColumnStartDate        = "start_date"
	ColumnEndDate          = "end_date"
	ColumnDeadline         = "deadline"
	ColumnNotificationTime = "notification_time"
	ColumnNotif1           = "notif1"
	ColumnNotif2           = "notif2"
	ColumnNotif3           = "notif3"
	ColumnNotif4           = "notif4"
	ColumnNotif5           = "notif5"
	ColumnNotif6           = "notif6"
	ColumnNotif7           = "notif7"
	ColumnNotif8           = "notif8"
)

// DateTimeColumns lists every persisted date/time column.
var DateTimeColumns = []string{
	ColumnStartDate,
	ColumnEndDate,
	ColumnDeadline,
	ColumnNotificationTime,
	ColumnNotif1,
	ColumnNotif2,
	ColumnNotif3,
	ColumnNotif4,
	ColumnNotif5,
	ColumnNotif6,
	ColumnNotif7,
	ColumnNotif8,
}

// IsDateTimeColumn reports whether name is a persisted date/time column
func IsDateTimeColumn(name string) bool {
	for _, c := range DateTimeColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Task represents a task row. Date/time columns hold wall-clock values
// without a zone; the offset engine decides which location they belong to.
type Task struct {
	ID               string     `json:"task_id" db:"task_id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	Status           TaskStatus `json:"status" db:"status"`
	StartDate        *time.Time `json:"start_date" db:"start_date"`
	EndDate          *time.Time `json:"end_date" db:"end_date"`
	Deadline         *time.Time `json:"deadline" db:"deadline"`
	NotificationTime *time.Time `json:"notification_time" db:"notification_time"`
	Notif1           *time.Time `json:"notif1" db:"notif1"`
	Notif2           *time.Time `json:"notif2" db:"notif2"`
	Notif3           *time.Time `json:"notif3" db:"notif3"`
	Notif4           *time.Time `json:"notif4" db:"notif4"`
	Notif5           *time.Time `json:"notif5" db:"notif5"`
	Notif6           *time.Time `json:"notif6" db:"notif6"`
	Notif7           *time.Time `json:"notif7" db:"notif7"`
	Notif8           *time.Time `json:"notif8" db:"notif8"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`

	// Offsets maps a date/time column to the token deriving it from its predecessor.
	Offsets map[string]string `json:"offsets" db:"-"`
}

// DateTimeOffset is one stored derived-value link
type DateTimeOffset struct {
	TaskID      string    `json:"task_id" db:"task_id"`
	ColumnName  string    `json:"column_name" db:"column_name"`
	OffsetValue string    `json:"offset_value" db:"offset_value"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (t *Task) column(name string) (**time.Time, error) {
	switch name {
	case ColumnStartDate:
		return &t.StartDate, nil
	case ColumnEndDate:
		return &t.EndDate, nil
	case ColumnDeadline:
		return &t.Deadline, nil
	case ColumnNotificationTime:
		return &t.NotificationTime, nil
	case ColumnNotif1:
		return &t.Notif1, nil
	case ColumnNotif2:
		return &t.Notif2, nil
	case ColumnNotif3:
		return &t.Notif3, nil
	case ColumnNotif4:
		return &t.Notif4, nil
	case ColumnNotif5:
		return &t.Notif5, nil
	case ColumnNotif6:
		return &t.Notif6, nil
	case ColumnNotif7:
		return &t.Notif7, nil
	case ColumnNotif8:
		return &t.Notif8, nil
	}
	return nil, ErrUnknownColumn
}

// DateTime returns the value of a date/time column, nil when unset
func (t *Task) DateTime(name string) (*time.Time, error) {
	field, err := t.column(name)
	if err != nil {
		return nil, err
	}
	return *field, nil
}

// SetDateTime sets a date/time column; nil clears it
func (t *Task) SetDateTime(name string, value *time.Time) error {
	field, err := t.column(name)
	if err != nil {
		return err
	}
	*field = value
	return nil
}

// IsNew reports whether the task has not been persisted yet
func (t *Task) IsNew() bool {
	return t.ID == ""
}
