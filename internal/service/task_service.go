package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// TaskService handles cleaning assignments on the development server.
type TaskService struct {
	tasks repository.TaskRepository
}

// NewTaskService creates the service.
func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Assign stores a new assignment.
func (s *TaskService) Assign(ctx context.Context, in domain.TaskAssignment) (*domain.Task, error) {
	if strings.TrimSpace(in.RoomID) == "" || strings.TrimSpace(in.CleanerID) == "" ||
		strings.TrimSpace(in.AssignmentDate) == "" || strings.TrimSpace(in.AssignedByID) == "" {
		return nil, apperrors.NewValidationError("Missing required fields.", nil)
	}
	if _, err := time.Parse("2006-01-02", in.AssignmentDate); err != nil {
		return nil, apperrors.NewValidationError("assignment_date must be YYYY-MM-DD.", nil)
	}

	task := &domain.Task{
		RoomID:         in.RoomID,
		CleanerID:      in.CleanerID,
		AssignedByID:   in.AssignedByID,
		AssignmentDate: in.AssignmentDate,
		Notes:          in.Notes,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return task, nil
}

// ListForCleaner returns the assignments of one cleaner.
func (s *TaskService) ListForCleaner(ctx context.Context, cleanerID string) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByCleaner(ctx, cleanerID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tasks, nil
}
