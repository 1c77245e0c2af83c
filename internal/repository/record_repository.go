package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

// RecordRepository stores cleaning records for the development server.
type RecordRepository interface {
	Create(ctx context.Context, record *domain.CleaningRecord) error
	ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]domain.CleaningRecord, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ApprovalStatus) (*domain.CleaningRecord, error)
	ListApprovedSince(ctx context.Context, since time.Time) ([]domain.CleaningRecord, error)
}

type recordRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records []domain.CleaningRecord
}

// NewRecordRepository returns an in-memory implementation.
func NewRecordRepository() RecordRepository {
	return &recordRepository{}
}

func (r *recordRepository) Create(_ context.Context, record *domain.CleaningRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = r.nextID
	record.CreatedAt = time.Now().UTC()
	record.ManagerApprovalStatus = domain.ApprovalPending
	r.records = append(r.records, *record)
	return nil
}

func (r *recordRepository) ListByStatus(_ context.Context, status domain.ApprovalStatus) ([]domain.CleaningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CleaningRecord, 0)
	for _, record := range r.records {
		if record.ManagerApprovalStatus == status {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *recordRepository) UpdateStatus(_ context.Context, id int64, status domain.ApprovalStatus) (*domain.CleaningRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].ManagerApprovalStatus = status
			updated := r.records[i]
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

func (r *recordRepository) ListApprovedSince(_ context.Context, since time.Time) ([]domain.CleaningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CleaningRecord, 0)
	for _, record := range r.records {
		if record.ManagerApprovalStatus == domain.ApprovalApproved && !record.CreatedAt.Before(since) {
			out = append(out, record)
		}
	}
	return out, nil
}
