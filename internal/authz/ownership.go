package authz

import (
	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

// CanAccessUser allows a user to read or change their own record; admins
// may touch any record.
func CanAccessUser(id *auth.Claims, targetID string) bool {
	if id == nil {
		return false
	}
	return id.Role == models.RoleAdmin || id.UserID == targetID
}

// CanMutateProduct allows the owning vendor or an admin.
func CanMutateProduct(id *auth.Claims, p *models.Product) bool {
	if id == nil || p == nil {
		return false
	}
	switch id.Role {
	case models.RoleAdmin:
		return true
	case models.RoleVendor:
		return p.VendorID == id.UserID
	}
	return false
}

// CanListUsers allows anyone to browse vendors; any other listing is
// admin-only.
func CanListUsers(id *auth.Claims, role models.Role) bool {
	return role == models.RoleVendor || IsAdmin(id)
}

// IsAdmin is a nil-safe role check.
func IsAdmin(id *auth.Claims) bool {
	return id != nil && id.Role == models.RoleAdmin
}
