package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskmaster/taskgrid/internal/domain/entities"
	"github.com/taskmaster/taskgrid/internal/domain/offset"
	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
	"github.com/taskmaster/taskgrid/internal/ports"
)

// Reasons an incoming offset is not stored.
const (
	dropUnknownColumn = "unknown_column"
	dropInvalidToken  = "invalid_token"
	dropInconsistent  = "inconsistent"
)

// TaskService handles task persistence for the grid. It re-checks every
// incoming offset against the submitted values before storing it.
type TaskService struct {
	taskRepo ports.TaskRepository
	engine   *offset.Engine
	logger   *logger.Logger
	newID    func() string

	saved   *prometheus.CounterVec
	dropped *prometheus.CounterVec
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, engine *offset.Engine, log *logger.Logger) *TaskService {
	if log == nil {
		log = logger.Nop()
	}
	return &TaskService{
		taskRepo: taskRepo,
		engine:   engine,
		logger:   log.WithComponent("task_service"),
		newID:    uuid.NewString,
		saved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskgrid_tasks_saved_total",
			Help: "Tasks saved, by operation",
		}, []string{"operation"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskgrid_offsets_dropped_total",
			Help: "Submitted offsets that were not stored, by reason",
		}, []string{"reason"}),
	}
}

// Collectors returns the service metrics for registration.
func (s *TaskService) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.saved, s.dropped}
}

// SaveTask creates the task when id is empty and replaces it otherwise.
func (s *TaskService) SaveTask(ctx context.Context, id string, req ports.SaveTaskRequest) (*ports.TaskRecord, error) {
	task, err := s.taskFromRequest(req)
	if err != nil {
		return nil, err
	}
	task.Offsets = s.consistentOffsets(id, req)

	operation := "update"
	if id == "" {
		operation = "create"
		task.ID = s.newID()
		err = s.taskRepo.Create(ctx, task)
	} else {
		task.ID = id
		err = s.taskRepo.Update(ctx, task)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s task: %w", operation, err)
	}

	s.saved.WithLabelValues(operation).Inc()
	s.logger.Infow("Task saved",
		"task_id", task.ID,
		"operation", operation,
		"offsets", len(task.Offsets),
	)

	rec := toRecord(task)
	return &rec, nil
}

func (s *TaskService) taskFromRequest(req ports.SaveTaskRequest) (*entities.Task, error) {
	status := entities.TaskStatus(req.Status)
	if status == "" {
		status = entities.TaskStatusPending
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidStatus, req.Status)
	}

	task := &entities.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	}
	for _, column := range entities.DateTimeColumns {
		value := req.Value(column)
		if value == "" {
			continue
		}
		t, err := s.engine.ParseLocal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", entities.ErrInvalidTimestamp, column, value)
		}
		if err := task.SetDateTime(column, &t); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// consistentOffsets keeps only the offsets that still derive their column's
// submitted value from its predecessor.
func (s *TaskService) consistentOffsets(id string, req ports.SaveTaskRequest) map[string]string {
	out := make(map[string]string, len(req.Offsets))
	for column, token := range req.Offsets {
		reason := ""
		switch {
		case !s.engine.Chain().Contains(column) || !entities.IsDateTimeColumn(column):
			reason = dropUnknownColumn
		default:
			if _, err := offset.Parse(token); err != nil {
				reason = dropInvalidToken
				break
			}
			prev, ok := s.engine.Previous(column)
			if !ok || !s.engine.Consistent(req.Value(prev), token, req.Value(column)) {
				reason = dropInconsistent
			}
		}

		if reason != "" {
			s.dropped.WithLabelValues(reason).Inc()
			s.logger.Warnw("Offset dropped",
				"task_id", id,
				"column", column,
				"offset", token,
				"reason", reason,
			)
			continue
		}
		out[column] = token
	}
	return out
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*ports.TaskRecord, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	rec := toRecord(task)
	return &rec, nil
}

// DeleteTask deletes a task and its offsets
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.saved.WithLabelValues("delete").Inc()
	s.logger.Infow("Task deleted", "task_id", id)
	return nil
}

// ListTasks lists tasks with filtering
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]*ports.TaskRecord, int64, error) {
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	total, err := s.taskRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	records := make([]*ports.TaskRecord, len(tasks))
	for i, task := range tasks {
		rec := toRecord(task)
		records[i] = &rec
	}
	return records, total, nil
}

// toRecord renders a task in wire form. Date/time columns are stored without
// a zone, so the wall clock of the stored value is the local timestamp.
func toRecord(task *entities.Task) ports.TaskRecord {
	rec := ports.TaskRecord{
		TaskID:    task.ID,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	rec.Title = task.Title
	rec.Description = task.Description
	rec.Status = string(task.Status)
	for _, column := range entities.DateTimeColumns {
		t, err := task.DateTime(column)
		if err != nil || t == nil {
			continue
		}
		_ = rec.SetValue(column, wallClock(*t))
	}
	rec.Offsets = make(map[string]string, len(task.Offsets))
	for column, token := range task.Offsets {
		rec.Offsets[column] = token
	}
	return rec
}

func wallClock(t time.Time) string {
	return t.Format(offset.LocalLayout)
}
