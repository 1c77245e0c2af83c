package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/auth"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/service"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// TasksHandler exposes cleaning assignments.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(tasks *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// List handles GET /tasks/:cleaner_id. Cleaners may only list their own.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	cleanerID := c.Params("cleaner_id")
	if principal, ok := auth.PrincipalFromContext(c); ok &&
		principal.Claims.Role == domain.RoleCleaner && principal.Claims.UserID != cleanerID {
		return apperrors.NewForbidden("cleaners may only list their own tasks")
	}

	tasks, err := h.tasks.ListForCleaner(c.UserContext(), cleanerID)
	if err != nil {
		return err
	}
	return c.JSON(dto.TasksResponse{Success: true, Data: tasks})
}

// Assign handles POST /assign_task.
func (h *TasksHandler) Assign(c *fiber.Ctx) error {
	var req domain.TaskAssignment
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Missing required fields.")
	}

	task, err := h.tasks.Assign(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Task assigned successfully.",
		"data":    task,
	})
}
