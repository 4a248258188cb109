package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/tasktracker/api/http/presenter"
	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/security/jwt"
	"github.com/artem13815/tasktracker/pkg/task"
)

type TaskHandler struct {
	uc  task.UseCase
	log *slog.Logger
}

func NewTaskHandler(uc task.UseCase, log *slog.Logger) *TaskHandler {
	return &TaskHandler{uc: uc, log: log}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
}

// Absent or null fields are left unchanged.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Status      *string `json:"status"`
}

type taskResponse struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	AssignedTo  task.Assignee `json:"assignedTo"`
	DueDate     string        `json:"dueDate"`
	Status      task.Status   `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type listTasksResponse struct {
	Tasks      []taskResponse  `json:"tasks"`
	Pagination task.Pagination `json:"pagination"`
}

type statsResponse struct {
	Pending    int64 `json:"Pending"`
	InProgress int64 `json:"In Progress"`
	Completed  int64 `json:"Completed"`
	Total      int64 `json:"total"`
}

func toTaskResponse(v task.View) taskResponse {
	return taskResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		AssignedTo:  v.Assignee,
		DueDate:     v.DueDate.Format(task.DateLayout),
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// @Summary Create task
// @Description Admin only. The assignee must be an existing user.
// @Tags    tasks
// @Accept  json
// @Produce json
// @Param   input body createTaskRequest true "task payload"
// @Security BearerAuth
// @Success 201 {object} taskResponse
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	caller, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Access token required")
	}
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	var errs fieldErrors
	if strings.TrimSpace(req.Title) == "" {
		errs.add("title", "Title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs.add("description", "Description is required")
	}
	assignee, err := uuid.Parse(strings.TrimSpace(req.AssignedTo))
	if err != nil || assignee == uuid.Nil {
		errs.add("assignedTo", "Valid assigned user ID is required")
	}
	due, err := task.ParseDate(req.DueDate)
	if err != nil {
		errs.add("dueDate", "Valid due date is required")
	}
	if !errs.empty() {
		return presenter.Validation(c, errs)
	}

	v, err := h.uc.Create(c.UserContext(), caller, task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignee,
		DueDate:     due,
	})
	if err != nil {
		return fail(c, h.log, err, "create task failed")
	}
	return presenter.JSON(c, http.StatusCreated, toTaskResponse(v))
}

// @Summary List tasks
// @Description Admins see every task; employees only their own, whatever the filters say.
// @Tags    tasks
// @Produce json
// @Param   status     query string false "Pending | In Progress | Completed"
// @Param   assignedTo query string false "assignee id (admin only)"
// @Param   page       query int    false "page, default 1"
// @Param   limit      query int    false "page size, default 10"
// @Security BearerAuth
// @Success 200 {object} listTasksResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	caller, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Access token required")
	}
	page, limit := parsePageLimit(c)
	q := task.ListQuery{
		Filter: task.Filter{Status: task.Status(strings.TrimSpace(c.Query("status")))},
		Page:   page,
		Limit:  limit,
	}
	if raw := strings.TrimSpace(c.Query("assignedTo")); raw != "" && caller.IsAdmin() {
		id, err := uuid.Parse(raw)
		if err != nil {
			return presenter.Validation(c, []presenter.FieldError{{Field: "assignedTo", Message: "Valid assigned user ID is required"}})
		}
		q.AssignedTo = id
	}

	res, err := h.uc.List(c.UserContext(), caller, q)
	if err != nil {
		return fail(c, h.log, err, "list tasks failed")
	}
	out := listTasksResponse{Tasks: make([]taskResponse, 0, len(res.Tasks)), Pagination: res.Pagination}
	for _, v := range res.Tasks {
		out.Tasks = append(out.Tasks, toTaskResponse(v))
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// @Summary Get task
// @Tags    tasks
// @Produce json
// @Param   id path string true "task id"
// @Security BearerAuth
// @Success 200 {object} taskResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [get]
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	caller, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Access token required")
	}
	v, err := h.uc.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return fail(c, h.log, err, "get task failed")
	}
	return presenter.JSON(c, http.StatusOK, toTaskResponse(v))
}

// @Summary Update task
// @Description Partial update. Employees may only update tasks assigned to them.
// @Tags    tasks
// @Accept  json
// @Produce json
// @Param   id    path string true "task id"
// @Param   input body updateTaskRequest true "fields to change"
// @Security BearerAuth
// @Success 200 {object} taskResponse
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	caller, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Access token required")
	}
	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	var errs fieldErrors
	var p task.Patch
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			errs.add("title", "Title cannot be empty")
		}
		p.Title = req.Title
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			errs.add("description", "Description cannot be empty")
		}
		p.Description = req.Description
	}
	if req.DueDate != nil {
		due, err := task.ParseDate(*req.DueDate)
		if err != nil {
			errs.add("dueDate", "Valid due date is required")
		}
		p.DueDate = &due
	}
	if req.Status != nil {
		st := task.Status(*req.Status)
		if !st.Valid() {
			errs.add("status", "Invalid status")
		}
		p.Status = &st
	}
	if !errs.empty() {
		return presenter.Validation(c, errs)
	}

	v, err := h.uc.Update(c.UserContext(), caller, c.Params("id"), p)
	if err != nil {
		return fail(c, h.log, err, "update task failed")
	}
	return presenter.JSON(c, http.StatusOK, toTaskResponse(v))
}

// @Summary Delete task
// @Tags    tasks
// @Produce json
// @Param   id path string true "task id"
// @Security BearerAuth
// @Success 200 {object} presenter.MessageResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	caller, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Access token required")
	}
	if err := h.uc.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
		return fail(c, h.log, err, "delete task failed")
	}
	return presenter.JSON(c, http.StatusOK, presenter.MessageResponse{Message: "Task deleted successfully"})
}

// @Summary Task counts per status
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} statsResponse
// @Router  /tasks/stats [get]
func (h *TaskHandler) Stats(c *fiber.Ctx) error {
	caller, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Access token required")
	}
	counts, err := h.uc.Stats(c.UserContext(), caller)
	if err != nil {
		return fail(c, h.log, err, "task stats failed")
	}
	out := statsResponse{
		Pending:    counts[task.StatusPending],
		InProgress: counts[task.StatusInProgress],
		Completed:  counts[task.StatusCompleted],
	}
	out.Total = out.Pending + out.InProgress + out.Completed
	return presenter.JSON(c, http.StatusOK, out)
}

// @Summary List employees
// @Description Admin only; used for assignment.
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} auth.PublicUser
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /tasks/users [get]
func (h *TaskHandler) Employees(c *fiber.Ctx) error {
	users, err := h.uc.ListEmployees(c.UserContext())
	if err != nil {
		return fail(c, h.log, err, "list employees failed")
	}
	out := make([]auth.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return presenter.JSON(c, http.StatusOK, out)
}
