package services

import (
	"context"

	"wegroup/internal/models"
	"wegroup/internal/repositories"

	"github.com/google/uuid"
)

// ProvisioningService guarantees the system role catalog exists for a tenant.
type ProvisioningService interface {
	// EnsureSystemRoles is idempotent: calling it N times leaves exactly one
	// row per system role name for the tenant. Safe to call concurrently
	// because the underlying write upserts on (tenant_id, name).
	EnsureSystemRoles(ctx context.Context, tenantID uuid.UUID) error
}

type provisioningService struct {
	roleRepo repositories.RoleRepository
	catalog  []string
}

// NewProvisioningService builds a provisioner over the given catalog. A nil
// catalog falls back to the built-in system roles.
func NewProvisioningService(roleRepo repositories.RoleRepository, catalog []string) ProvisioningService {
	if catalog == nil {
		catalog = models.SystemRoleCatalog()
	}
	return &provisioningService{roleRepo: roleRepo, catalog: catalog}
}

func (s *provisioningService) EnsureSystemRoles(ctx context.Context, tenantID uuid.UUID) error {
	for _, name := range s.catalog {
		description := "system role"
		role := &models.Role{
			ID:          uuid.New(),
			TenantID:    tenantID,
			Name:        name,
			Description: &description,
		}
		if err := s.roleRepo.Upsert(ctx, role); err != nil {
			// Store unavailable is the only failure mode; surface it.
			return err
		}
	}
	return nil
}
