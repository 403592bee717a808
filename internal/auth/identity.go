// Package auth implements the stateless bearer-token layer: token issuance
// and verification, the request identity, and the ownership guard.
package auth

import "gigbuddy/internal/models"

// Identity is the verified caller attached to a request after token
// verification. It is the only thing handlers know about the caller.
type Identity struct {
	ID    uint            `json:"id"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role override.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}
