package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/events"
	"github.com/spec-kit/smart-hospital-client/internal/ui"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// NotificationService shows transient messages and dismisses them once
// their time is up.
type NotificationService struct {
	dispatcher events.Dispatcher
	view       ui.View
	logger     *zap.Logger
	ttl        time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, view ui.View, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		view:       view,
		logger:     logger,
		ttl:        cfg.TTL(),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventNotificationExpired, n.handleExpired)
}

// Success shows a success message.
func (n *NotificationService) Success(message string) domain.Notification {
	return n.notify(message, domain.NotificationSuccess)
}

// Error shows err as an error message.
func (n *NotificationService) Error(err error) domain.Notification {
	return n.notify(apperrors.UserMessage(err), domain.NotificationError)
}

func (n *NotificationService) notify(message string, level domain.NotificationLevel) domain.Notification {
	note := domain.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Level:     level,
		ExpiresAt: time.Now().Add(n.ttl),
	}
	n.logger.Debug("notify",
		zap.String("notification_id", note.ID),
		zap.String("level", string(level)),
		zap.String("message", message))
	n.view.Notify(note)

	// not tracked by the queue so WaitIdle does not sit out the TTL
	time.AfterFunc(n.ttl, func() {
		expired := events.New(events.EventNotificationExpired, events.NotificationExpiredPayload{ID: note.ID})
		if err := n.dispatcher.Publish(context.Background(), expired); err != nil {
			n.logger.Debug("notification expired after shutdown", zap.String("notification_id", note.ID))
		}
	})
	return note
}

func (n *NotificationService) handleExpired(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.NotificationExpiredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.view.Dismiss(payload.ID)
	return nil
}
