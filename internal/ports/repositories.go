package ports

import (
	"context"

	"github.com/taskmaster/taskgrid/internal/domain/entities"
)

// TaskRepository defines the interface for task data operations.
// Create and Update persist the task's Offsets together with the row.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id string) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
}

// TaskFilter narrows task listings
type TaskFilter struct {
	Status *entities.TaskStatus
	Search *string
	Limit  int
	Offset int
}
