package models

// Role values carried by sessions and registrations.
const (
	RoleFarmer = "farmer"
	RoleExpert = "expert"
)

// SessionRecord identifies the currently signed-in actor. At most one session
// is active per client; it lives in either the ephemeral or the durable tier
// of the session store.
type SessionRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleFarmer || r == RoleExpert
}
