package auth

import "gigbuddy/internal/models"

// RequireOwner allows the request when the identity owns the resource or
// holds the admin role override. The guard never fetches the resource:
// callers must resolve the owner first, so a missing resource yields 404
// before this check ever runs.
func RequireOwner(identity Identity, ownerID uint) error {
	if identity.ID == ownerID || identity.IsAdmin() {
		return nil
	}
	return models.NewAuthorizationError(models.CodeOwnershipRequired, "Ownership required")
}

// RequireAdmin allows the request only for admin identities.
func RequireAdmin(identity Identity) error {
	if identity.IsAdmin() {
		return nil
	}
	return models.NewAuthorizationError(models.CodeAdminRequired, "Admin access required")
}
