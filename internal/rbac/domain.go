// Package rbac gates HTTP routes by the coarse role carried in the session.
//
// The fine-grained permission matrix persisted by the roles module is
// declarative configuration for the UI; route enforcement happens only at
// the level of these three roles.
package rbac

// Role is the coarse access role assigned to every user account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSales    Role = "SALES"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleCustomer:
		return true
	}
	return false
}
