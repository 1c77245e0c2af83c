package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/events"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// Dashboard actions.
const (
	ActionVerifyRoom = "verify_room"
	ActionApprove    = "approve"
	ActionAssignTask = "assign_task"
	ActionReport     = "weekly_report"
)

// User facing outcomes of dashboard actions.
const (
	MsgWorkSubmitted    = "Work submitted successfully for verification."
	MsgTaskAssigned     = "Task assigned successfully."
	MsgReportDownloaded = "Report downloaded successfully."
)

// DashboardAPI is the part of the remote API behind dashboard actions.
type DashboardAPI interface {
	VerifyRoom(ctx context.Context, roomID, cleanerID, filename string, photo io.Reader) error
	Approve(ctx context.Context, recordID int64, status domain.ApprovalStatus) error
	AssignTask(ctx context.Context, assignment domain.TaskAssignment) error
	WeeklyReport(ctx context.Context) (*domain.Report, error)
}

// ClaimsSource returns the identity of the current session.
type ClaimsSource interface {
	Current(ctx context.Context) (*domain.Claims, error)
}

// EpochSource reports the current session epoch.
type EpochSource interface {
	Epoch() uint64
}

// DashboardService runs the actions offered by the role dashboards. An action
// is rejected locally when the signed-in role has no page offering it; the
// server authorizes every call regardless.
type DashboardService struct {
	queue    events.Runner
	api      DashboardAPI
	claims   ClaimsSource
	epochs   EpochSource
	router   Router
	notifier *NotificationService
	logger   *zap.Logger
	metrics  *observability.Metrics
	dir      string
}

// DashboardDependencies bundles collaborators.
type DashboardDependencies struct {
	Queue     events.Runner
	API       DashboardAPI
	Claims    ClaimsSource
	Epochs    EpochSource
	Router    Router
	Notifier  *NotificationService
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Downloads config.DownloadsConfig
}

// NewDashboardService builds the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := deps.Downloads.Dir
	if dir == "" {
		dir = "."
	}
	return &DashboardService{
		queue:    deps.Queue,
		api:      deps.API,
		claims:   deps.Claims,
		epochs:   deps.Epochs,
		router:   deps.Router,
		notifier: deps.Notifier,
		logger:   logger,
		metrics:  deps.Metrics,
		dir:      dir,
	}
}

// RegisterHandlers subscribes to events.
func (s *DashboardService) RegisterHandlers() {
	s.queue.Subscribe(events.EventActionCompleted, s.handleCompleted)
}

// SubmitVerification uploads an after-cleaning photo of a room.
func (s *DashboardService) SubmitVerification(ctx context.Context, roomID, photoPath string) error {
	claims, err := s.require(ctx, ActionVerifyRoom, domain.PageCleaner)
	if err != nil {
		return err
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" || photoPath == "" {
		return s.reject(ctx, ActionVerifyRoom, apperrors.NewValidationError("room and photo are required", nil))
	}
	photo, err := os.Open(photoPath)
	if err != nil {
		return s.reject(ctx, ActionVerifyRoom, fmt.Errorf("open photo: %w", err))
	}

	s.run(ctx, ActionVerifyRoom, func(ctx context.Context) (string, bool, error) {
		defer photo.Close()
		if err := s.api.VerifyRoom(ctx, roomID, claims.UserID, filepath.Base(photoPath), photo); err != nil {
			return "", false, err
		}
		return MsgWorkSubmitted, false, nil
	})
	return nil
}

// Review records a manager decision on a cleaning record and reloads the
// approval list.
func (s *DashboardService) Review(ctx context.Context, recordID int64, status domain.ApprovalStatus) error {
	if _, err := s.require(ctx, ActionApprove, domain.PageManager); err != nil {
		return err
	}
	if !status.Valid() {
		return s.reject(ctx, ActionApprove, apperrors.NewValidationError("Invalid status. Must be 'Approved' or 'Rework'.", nil))
	}

	s.run(ctx, ActionApprove, func(ctx context.Context) (string, bool, error) {
		if err := s.api.Approve(ctx, recordID, status); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Record %s successfully.", strings.ToLower(string(status))), true, nil
	})
	return nil
}

// AssignTask assigns a room to a cleaner on a date given as YYYY-MM-DD.
func (s *DashboardService) AssignTask(ctx context.Context, roomID, cleanerID, date, notes string) error {
	claims, err := s.require(ctx, ActionAssignTask, domain.PageAdmin)
	if err != nil {
		return err
	}
	assignment := domain.TaskAssignment{
		RoomID:         strings.TrimSpace(roomID),
		CleanerID:      strings.TrimSpace(cleanerID),
		AssignmentDate: strings.TrimSpace(date),
		Notes:          notes,
		AssignedByID:   claims.UserID,
	}
	if assignment.RoomID == "" || assignment.CleanerID == "" || assignment.AssignmentDate == "" {
		return s.reject(ctx, ActionAssignTask, apperrors.NewValidationError("room, cleaner and date are required", nil))
	}
	if _, err := time.Parse("2006-01-02", assignment.AssignmentDate); err != nil {
		return s.reject(ctx, ActionAssignTask, apperrors.NewValidationError("date must be YYYY-MM-DD", nil))
	}

	s.run(ctx, ActionAssignTask, func(ctx context.Context) (string, bool, error) {
		if err := s.api.AssignTask(ctx, assignment); err != nil {
			return "", false, err
		}
		return MsgTaskAssigned, false, nil
	})
	return nil
}

// DownloadReport saves the weekly report into the download directory.
func (s *DashboardService) DownloadReport(ctx context.Context) error {
	if _, err := s.require(ctx, ActionReport, domain.PageAdmin); err != nil {
		return err
	}

	s.run(ctx, ActionReport, func(ctx context.Context) (string, bool, error) {
		report, err := s.api.WeeklyReport(ctx)
		if err != nil {
			return "", false, err
		}
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", false, fmt.Errorf("create download dir: %w", err)
		}
		path := filepath.Join(s.dir, report.Filename)
		if err := os.WriteFile(path, report.Content, 0o644); err != nil {
			return "", false, fmt.Errorf("save report: %w", err)
		}
		s.logger.Info("report saved", zap.String("path", path), zap.Int("bytes", len(report.Content)))
		return MsgReportDownloaded, false, nil
	})
	return nil
}

// require checks that the signed-in role lands on page.
func (s *DashboardService) require(ctx context.Context, action string, page domain.Page) (*domain.Claims, error) {
	claims, err := s.claims.Current(ctx)
	if err != nil {
		return nil, s.reject(ctx, action, apperrors.NewUnauthorized("Please log in first."))
	}
	if rolePage, ok := claims.Role.Page(); !ok || rolePage != page {
		return nil, s.reject(ctx, action, apperrors.NewForbidden("This action is not available on your dashboard."))
	}
	return claims, nil
}

// reject reports a locally refused action through the usual completion path.
func (s *DashboardService) reject(ctx context.Context, action string, err error) error {
	done := events.ActionCompletedPayload{Epoch: s.epochs.Epoch(), Action: action, Err: err}
	if pubErr := s.queue.Publish(ctx, events.New(events.EventActionCompleted, done)); pubErr != nil {
		s.logger.Debug("action rejected after shutdown", zap.String("action", action))
	}
	return err
}

func (s *DashboardService) run(ctx context.Context, action string, fn func(ctx context.Context) (string, bool, error)) {
	epoch := s.epochs.Epoch()
	s.queue.Go(ctx, func(ctx context.Context) {
		message, refresh, err := fn(ctx)
		done := events.ActionCompletedPayload{Epoch: epoch, Action: action, Message: message, Err: err, Refresh: refresh}
		if pubErr := s.queue.Publish(ctx, events.New(events.EventActionCompleted, done)); pubErr != nil {
			s.logger.Debug("action finished after shutdown", zap.String("action", action))
		}
	})
}

func (s *DashboardService) handleCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ActionCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if payload.Epoch != s.epochs.Epoch() {
		s.metrics.RecordStale(payload.Action)
		s.logger.Info("dropping action result from an earlier session", zap.String("action", payload.Action))
		return nil
	}
	if payload.Err != nil {
		s.logger.Warn("dashboard action failed", zap.String("action", payload.Action), zap.Error(payload.Err))
		s.metrics.RecordAction(payload.Action, "error")
		s.notifier.Error(payload.Err)
		return nil
	}
	s.metrics.RecordAction(payload.Action, "ok")
	s.notifier.Success(payload.Message)
	if payload.Refresh {
		s.router.Route(ctx)
	}
	return nil
}
