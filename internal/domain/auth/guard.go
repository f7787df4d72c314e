package auth

import "context"

// CheckOwner allows the operation only when the caller's identity owns the resource.
// A missing identity or a non-positive owner id is denied.
func CheckOwner(ctx context.Context, resourceOwnerID int64) error {
	claims, ok := ClaimsFrom(ctx)
	if !ok || claims.UserID <= 0 || resourceOwnerID <= 0 {
		return errForbidden()
	}
	if claims.UserID != resourceOwnerID {
		return errForbidden()
	}
	return nil
}
