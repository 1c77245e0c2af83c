package worker

import (
	"github.com/spec-kit/smart-hospital-client/internal/service"
)

// Subscriber is a service that reacts to queue events.
type Subscriber interface {
	RegisterHandlers()
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartHandlers registers every subscriber on the queue.
func StartHandlers(subscribers ...Subscriber) {
	for _, s := range subscribers {
		if s == nil {
			continue
		}
		s.RegisterHandlers()
	}
}
