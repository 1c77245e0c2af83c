package domain

import "time"

// NotificationLevel distinguishes success from error messages.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID        string
	Message   string
	Level     NotificationLevel
	ExpiresAt time.Time
}
