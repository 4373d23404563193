package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB represents an opaque key-value document stored in a jsonb column.
type JSONB map[string]interface{}

type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Domain    string    `json:"domain" db:"domain"`
	Subdomain string    `json:"subdomain" db:"subdomain"`
	Settings  JSONB     `json:"settings" db:"settings"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Tenant status values. Tenants are deactivated, never hard-deleted.
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)
