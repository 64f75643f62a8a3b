package models

// Identity is the authenticated caller attached to a request
type Identity struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the identity may use admin-only operations.
// It is evaluated per request and never cached.
func IsAdmin(identity Identity) bool {
	return identity.Role == RoleAdmin
}
