package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// RecordService handles cleaning verification and review on the development
// server. Photos are not analysed; every non-empty upload is judged clean.
type RecordService struct {
	records repository.RecordRepository
	now     func() time.Time
}

// NewRecordService creates the service.
func NewRecordService(records repository.RecordRepository) *RecordService {
	return &RecordService{records: records, now: time.Now}
}

// Verify stores a submitted cleaning for manager review.
func (s *RecordService) Verify(ctx context.Context, roomID, cleanerID, filename string, photo []byte) (*domain.CleaningRecord, error) {
	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(cleanerID) == "" {
		return nil, apperrors.NewValidationError("Missing required form data.", nil)
	}
	if len(photo) == 0 {
		return nil, apperrors.NewValidationError("Uploaded photo is empty.", nil)
	}

	record := &domain.CleaningRecord{
		RoomID:            roomID,
		CleanerID:         cleanerID,
		AfterPhotoURL:     "/photos/" + filename,
		CleanlinessStatus: "Clean",
		AIRemarks:         fmt.Sprintf("Automated check accepted %s (%d bytes).", filename, len(photo)),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return record, nil
}

// Pending lists records awaiting a manager decision.
func (s *RecordService) Pending(ctx context.Context) ([]domain.CleaningRecord, error) {
	records, err := s.records.ListByStatus(ctx, domain.ApprovalPending)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return records, nil
}

// Review applies a manager decision.
func (s *RecordService) Review(ctx context.Context, recordID int64, status domain.ApprovalStatus) (*domain.CleaningRecord, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status. Must be 'Approved' or 'Rework'.", nil)
	}
	record, err := s.records.UpdateStatus(ctx, recordID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("record", map[string]any{"record_id": recordID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return record, nil
}

// WeeklyReport renders the records approved during the last seven days as CSV.
func (s *RecordService) WeeklyReport(ctx context.Context) (*domain.Report, error) {
	now := s.now()
	records, err := s.records.ListApprovedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "room_id", "cleaner_id", "cleanliness_status", "ai_remarks", "submitted_at"})
	for _, r := range records {
		_ = w.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.RoomID,
			r.CleanerID,
			r.CleanlinessStatus,
			r.AIRemarks,
			r.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &domain.Report{
		Filename:    fmt.Sprintf("Weekly_Report_%s.csv", now.Format("2006-01-02")),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}
