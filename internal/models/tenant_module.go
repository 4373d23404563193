package models

import (
	"time"

	"github.com/google/uuid"
)

// ModuleType identifies a feature module that can be enabled per tenant.
type ModuleType string

const (
	ModuleHR        ModuleType = "HR"
	ModuleFinance   ModuleType = "FINANCE"
	ModuleLogistics ModuleType = "LOGISTICS"
	ModuleAnalytics ModuleType = "ANALYTICS"
	ModuleSales     ModuleType = "SALES"
)

// DefaultModuleTypes is the module set provisioned for every new tenant.
func DefaultModuleTypes() []ModuleType {
	return []ModuleType{ModuleHR, ModuleFinance, ModuleLogistics, ModuleAnalytics}
}

type TenantModule struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ModuleType ModuleType `json:"module_type" db:"module_type"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
