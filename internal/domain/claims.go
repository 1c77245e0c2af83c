package domain

import "time"

// Claims is the identity payload decoded from a session token. It is never
// verified on the client and is only used to pick a page.
type Claims struct {
	UserID    string
	Role      Role
	Email     string
	FullName  string
	ExpiresAt *time.Time
	Extra     map[string]any
}
