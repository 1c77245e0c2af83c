package ui

import (
	"sync"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

// View is the display the client renders into. A page render replaces
// whatever was shown before.
type View interface {
	Render(page domain.Page, body string)
	RenderError(page domain.Page, err error)
	SetLoggedIn(loggedIn bool)
	Notify(n domain.Notification)
	Dismiss(id string)
}

// Snapshot is what a view currently shows.
type Snapshot struct {
	Page         domain.Page
	Body         string
	Failed       bool
	LoggedIn     bool
	Notification *domain.Notification
}

// Location holds the navigation fragment of the running client.
type Location struct {
	mu   sync.RWMutex
	hash domain.Hash
}

// NewLocation returns a location starting at hash.
func NewLocation(hash domain.Hash) *Location {
	return &Location{hash: hash}
}

// Hash returns the current fragment.
func (l *Location) Hash() domain.Hash {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hash
}

// SetHash replaces the current fragment.
func (l *Location) SetHash(hash domain.Hash) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hash = hash
}

// ParseHash normalizes user input such as "register" or "#register".
func ParseHash(raw string) domain.Hash {
	if raw == "" {
		return domain.HashNone
	}
	if raw[0] != '#' {
		raw = "#" + raw
	}
	return domain.Hash(raw)
}
