package domain

// SessionStatus is the state of the routing state machine.
type SessionStatus string

const (
	SessionUnauthenticated SessionStatus = "unauthenticated"
	SessionAuthenticated   SessionStatus = "authenticated"
)

// SessionState describes the session at the instant of a routing decision.
type SessionState struct {
	Status SessionStatus
	Hash   Hash
	Role   Role
	UserID string
}

// Authenticated reports whether the state carries an identity.
func (s SessionState) Authenticated() bool {
	return s.Status == SessionAuthenticated
}
