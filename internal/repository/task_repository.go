package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

// TaskRepository stores cleaning assignments for the development server.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	ListByCleaner(ctx context.Context, cleanerID string) ([]domain.Task, error)
}

type taskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  []domain.Task
}

// NewTaskRepository returns an in-memory implementation.
func NewTaskRepository() TaskRepository {
	return &taskRepository{}
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	task.CreatedAt = time.Now().UTC()
	if task.Status == "" {
		task.Status = string(domain.ApprovalPending)
	}
	r.tasks = append(r.tasks, *task)
	return nil
}

func (r *taskRepository) ListByCleaner(_ context.Context, cleanerID string) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Task, 0)
	for _, task := range r.tasks {
		if task.CleanerID == cleanerID {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
