package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskmaster/taskgrid/internal/domain/entities"
	"github.com/taskmaster/taskgrid/internal/infrastructure/database"
	"github.com/taskmaster/taskgrid/internal/ports"
)

const taskColumns = `task_id, title, description, status, start_date, end_date, deadline,
	notification_time, notif1, notif2, notif3, notif4, notif5, notif6, notif7, notif8,
	created_at, updated_at`

// TaskRepositoryImpl implements the TaskRepository interface on PostgreSQL.
// Offsets live in task_datetime_offsets and are rewritten with the task row.
type TaskRepositoryImpl struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func dateTimeArgs(task *entities.Task) []interface{} {
	return []interface{}{
		task.StartDate, task.EndDate, task.Deadline, task.NotificationTime,
		task.Notif1, task.Notif2, task.Notif3, task.Notif4,
		task.Notif5, task.Notif6, task.Notif7, task.Notif8,
	}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (task_id, title, description, status, start_date, end_date, deadline,
			notification_time, notif1, notif2, notif3, notif4, notif5, notif6, notif7, notif8)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`

	args := append([]interface{}{task.ID, task.Title, task.Description, task.Status}, dateTimeArgs(task)...)

	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return replaceOffsets(ctx, tx, task.ID, task.Offsets)
	})
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, start_date = $5, end_date = $6,
			deadline = $7, notification_time = $8, notif1 = $9, notif2 = $10, notif3 = $11,
			notif4 = $12, notif5 = $13, notif6 = $14, notif7 = $15, notif8 = $16,
			updated_at = CURRENT_TIMESTAMP
		WHERE task_id = $1
		RETURNING created_at, updated_at`

	args := append([]interface{}{task.ID, task.Title, task.Description, task.Status}, dateTimeArgs(task)...)

	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, query, args...).Scan(&task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entities.ErrTaskNotFound
			}
			return fmt.Errorf("update task: %w", err)
		}
		return replaceOffsets(ctx, tx, task.ID, task.Offsets)
	})
}

// replaceOffsets makes the stored offsets of a task exactly match offsets.
func replaceOffsets(ctx context.Context, tx *sqlx.Tx, taskID string, offsets map[string]string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_datetime_offsets WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("clear task offsets: %w", err)
	}

	columns := make([]string, 0, len(offsets))
	for column := range offsets {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	for _, column := range columns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO task_datetime_offsets (task_id, column_name, offset_value) VALUES ($1, $2, $3)`,
			taskID, column, offsets[column])
		if err != nil {
			return fmt.Errorf("store offset %s: %w", column, err)
		}
	}
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1`

	var task entities.Task
	if err := r.db.DB.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	if err := r.attachOffsets(ctx, []*entities.Task{&task}); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}

func buildWhere(filter ports.TaskFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+*filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at, task_id`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var tasks []*entities.Task
	if err := r.db.DB.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	if err := r.attachOffsets(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, filter ports.TaskFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	if err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks`+where, args...); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// attachOffsets loads the stored offsets of tasks with a single query.
func (r *TaskRepositoryImpl) attachOffsets(ctx context.Context, tasks []*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, len(tasks))
	byID := make(map[string]*entities.Task, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		byID[t.ID] = t
		t.Offsets = make(map[string]string)
	}

	var rows []entities.DateTimeOffset
	query := `
		SELECT task_id, column_name, offset_value, created_at
		FROM task_datetime_offsets
		WHERE task_id = ANY($1)`
	if err := r.db.DB.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load task offsets: %w", err)
	}

	for _, o := range rows {
		if t, ok := byID[o.TaskID]; ok {
			t.Offsets[o.ColumnName] = o.OffsetValue
		}
	}
	return nil
}
