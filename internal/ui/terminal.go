package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// Terminal renders pages and notifications as plain text.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	snapshot Snapshot
}

// NewTerminal writes to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Render replaces the shown page with body and prints it.
func (t *Terminal) Render(page domain.Page, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Page = page
	t.snapshot.Body = body
	t.snapshot.Failed = false
	t.printPage()
}

// RenderError shows an inline error in place of page.
func (t *Terminal) RenderError(page domain.Page, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Page = page
	t.snapshot.Body = "Error loading page: " + apperrors.UserMessage(err)
	t.snapshot.Failed = true
	t.printPage()
}

// SetLoggedIn toggles the signed-in chrome for the next render.
func (t *Terminal) SetLoggedIn(loggedIn bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.LoggedIn = loggedIn
}

// Notify shows n, replacing any earlier notification.
func (t *Terminal) Notify(n domain.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Notification = &n
	tag := "ok"
	if n.Level == domain.NotificationError {
		tag = "error"
	}
	fmt.Fprintf(t.out, "[%s] %s\n", tag, n.Message)
}

// Dismiss hides the notification with the given id if it is still shown.
func (t *Terminal) Dismiss(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snapshot.Notification != nil && t.snapshot.Notification.ID == id {
		t.snapshot.Notification = nil
	}
}

// Snapshot returns a copy of what is currently displayed.
func (t *Terminal) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.snapshot
	if snap.Notification != nil {
		n := *snap.Notification
		snap.Notification = &n
	}
	return snap
}

func (t *Terminal) printPage() {
	chrome := "signed out"
	if t.snapshot.LoggedIn {
		chrome = "signed in | logout"
	}
	fmt.Fprintf(t.out, "== %s == (%s)\n", strings.ToUpper(string(t.snapshot.Page)), chrome)
	body := strings.TrimRight(t.snapshot.Body, "\n")
	if body != "" {
		fmt.Fprintln(t.out, body)
	}
}
