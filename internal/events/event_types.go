package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPageLoad            EventType = "page_load"
	EventHashChanged         EventType = "hash_changed"
	EventRouteRequested      EventType = "route_requested"
	EventLoginSubmitted      EventType = "login_submitted"
	EventLoginCompleted      EventType = "login_completed"
	EventRegisterSubmitted   EventType = "register_submitted"
	EventRegisterCompleted   EventType = "register_completed"
	EventLogoutRequested     EventType = "logout_requested"
	EventPageLoaded          EventType = "page_loaded"
	EventActionCompleted     EventType = "action_completed"
	EventNotificationExpired EventType = "notification_expired"
)

// Event is a message delivered on the client event queue.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh ID.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// HashChangedPayload payload.
type HashChangedPayload struct {
	Hash domain.Hash `json:"hash"`
}

// LoginSubmittedPayload payload.
type LoginSubmittedPayload struct {
	Request dto.LoginRequest `json:"-"`
}

// LoginCompletedPayload payload. Epoch is the session epoch the request was
// started in.
type LoginCompletedPayload struct {
	Epoch    uint64             `json:"epoch"`
	Response *dto.LoginResponse `json:"response,omitempty"`
	Err      error              `json:"-"`
}

// RegisterSubmittedPayload payload.
type RegisterSubmittedPayload struct {
	Request dto.RegisterRequest `json:"-"`
}

// RegisterCompletedPayload payload.
type RegisterCompletedPayload struct {
	Epoch    uint64                `json:"epoch"`
	Response *dto.RegisterResponse `json:"response,omitempty"`
	Err      error                 `json:"-"`
}

// PageLoadedPayload payload. Seq identifies the render request.
type PageLoadedPayload struct {
	Seq  uint64      `json:"seq"`
	Page domain.Page `json:"page"`
	Body string      `json:"body"`
	Err  error       `json:"-"`
}

// ActionCompletedPayload reports the outcome of a dashboard action.
type ActionCompletedPayload struct {
	Epoch   uint64 `json:"epoch"`
	Action  string `json:"action"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	// Refresh asks for the current page to be routed again.
	Refresh bool `json:"refresh"`
}

// NotificationExpiredPayload payload.
type NotificationExpiredPayload struct {
	ID string `json:"id"`
}
