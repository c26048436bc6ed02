package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/taskgrid/internal/domain/entities"
	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
	"github.com/taskmaster/taskgrid/internal/ports"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, log *logger.Logger) *TaskHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      log,
	}
}

// CreateTask godoc
// @Summary Create a task
// @Description Save a new grid row. Offsets that no longer derive their column are dropped.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.SaveTaskRequest true "Task row"
// @Success 200 {object} ports.SaveResponse
// @Failure 400 {object} ports.SaveResponse
// @Security BearerAuth
// @Router /api/task [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	return h.save(c, "")
}

// UpdateTask godoc
// @Summary Update a task
// @Description Replace a saved grid row, offsets included
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body ports.SaveTaskRequest true "Task row"
// @Success 200 {object} ports.SaveResponse
// @Failure 400 {object} ports.SaveResponse
// @Failure 404 {object} ports.SaveResponse
// @Security BearerAuth
// @Router /api/task/{id} [post]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	return h.save(c, c.Param("id"))
}

// save answers with a SaveResponse on every outcome; the batch save reads
// the status field rather than the HTTP code.
func (h *TaskHandler) save(c echo.Context, id string) error {
	var req ports.SaveTaskRequest
	if err := c.Bind(&req); err != nil {
		return saveError(c, http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return saveError(c, http.StatusBadRequest, validationMessage(err))
	}

	rec, err := h.taskService.SaveTask(c.Request().Context(), id, req)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			h.logger.Errorw("Save task failed", "error", err, "task_id", id)
			return saveError(c, code, "Failed to save task")
		}
		return saveError(c, code, err.Error())
	}

	return c.JSON(http.StatusOK, ports.SaveResponse{
		Status: ports.ResponseStatusSuccess,
		TaskID: rec.TaskID,
	})
}

func saveError(c echo.Context, code int, message string) error {
	return c.JSON(code, ports.SaveResponse{
		Status:  ports.ResponseStatusError,
		Message: message,
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid " + verrs[0].Field() + ": failed " + verrs[0].Tag()
	}
	return err.Error()
}

// statusFor maps domain errors to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidTimestamp),
		errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrUnknownColumn):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetTask godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} ports.TaskRecord
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/task/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	rec, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Errorw("Get task failed", "error", err, "task_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve task")
	}

	return c.JSON(http.StatusOK, rec)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/task/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Errorw("Delete task failed", "error", err, "task_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete task")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListTasks godoc
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param status query string false "pending, completed or overdue"
// @Param search query string false "Title or description substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} ports.TaskListResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	filter := ports.TaskFilter{Limit: defaultListLimit}

	if status := c.QueryParam("status"); status != "" {
		taskStatus := entities.TaskStatus(status)
		if !taskStatus.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &taskStatus
	}

	if search := c.QueryParam("search"); search != "" {
		filter.Search = &search
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > maxListLimit {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid offset parameter")
		}
		filter.Offset = offset
	}

	tasks, total, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve tasks")
	}
	if tasks == nil {
		tasks = []*ports.TaskRecord{}
	}

	return c.JSON(http.StatusOK, ports.TaskListResponse{Tasks: tasks, Total: total})
}

// ErrorResponse is the body of non-save errors
type ErrorResponse struct {
	Message string `json:"message"`
}
