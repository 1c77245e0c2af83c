package domain

// Role is the role claim carried by a session token.
type Role string

const (
	RoleCleaner         Role = "cleaner"
	RoleManager         Role = "manager"
	RoleDean            Role = "dean"
	RoleBMCCommissioner Role = "bmc_commissioner"
)

// Roles lists the roles accepted at registration.
var Roles = []Role{RoleCleaner, RoleManager, RoleDean, RoleBMCCommissioner}

// Page maps a role to its dashboard. The second result is false for roles
// without a dashboard.
func (r Role) Page() (Page, bool) {
	switch r {
	case RoleCleaner:
		return PageCleaner, true
	case RoleManager:
		return PageManager, true
	case RoleDean, RoleBMCCommissioner:
		return PageAdmin, true
	default:
		return "", false
	}
}

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	_, ok := r.Page()
	return ok
}
