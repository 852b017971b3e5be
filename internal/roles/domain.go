package roles

import "time"

// PermissionMatrix maps module name to permission flags, e.g.
// {"invoices": {"view": true, "create": false}}. The matrix is persisted as
// declarative configuration for the UI; route gating uses the coarse role.
type PermissionMatrix map[string]map[string]bool

// Role represents a role definition with its permission matrix.
type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions PermissionMatrix
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateRoleRequest describes a new role.
type CreateRoleRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Description string           `json:"description" validate:"max=500"`
	Permissions PermissionMatrix `json:"permissions"`
}

// UpdateRoleRequest updates the description or the matrix.
type UpdateRoleRequest struct {
	Description *string           `json:"description,omitempty" validate:"omitempty,max=500"`
	Permissions *PermissionMatrix `json:"permissions,omitempty"`
}
