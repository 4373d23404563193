package models

import (
	"time"

	"github.com/google/uuid"
)

// System role names provisioned for every tenant. Role names are unique per
// tenant, not globally: every tenant gets its own "employee" row.
const (
	RoleEmployee   = "employee"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// SystemRoleCatalog lists the roles the provisioner guarantees per tenant.
func SystemRoleCatalog() []string {
	return []string{RoleEmployee, RoleManager, RoleAdmin, RoleSuperAdmin}
}

type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
