package models

// Role is the single authorization tag carried by every user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Roles lists the closed set of roles.
var Roles = []Role{RoleCustomer, RoleVendor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// DashboardPath is where a signed-in user of this role lands.
// Unknown roles fall back to the public root.
func (r Role) DashboardPath() string {
	switch r {
	case RoleVendor:
		return "/vendor/dashboard"
	case RoleCustomer:
		return "/customer/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	}
	return "/"
}
