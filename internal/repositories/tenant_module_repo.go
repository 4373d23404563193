package repositories

import (
	"context"

	"wegroup/internal/models"

	"github.com/google/uuid"
)

type TenantModuleRepository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantModule, error)
	// ListActiveTypes returns only module types currently flagged active.
	ListActiveTypes(ctx context.Context, tenantID uuid.UUID) ([]models.ModuleType, error)
	SetActive(ctx context.Context, tenantID uuid.UUID, moduleType models.ModuleType, active bool) error
}

type tenantModuleRepo struct {
	db DB
}

func NewTenantModuleRepo(db DB) TenantModuleRepository {
	return &tenantModuleRepo{db: db}
}

func (r *tenantModuleRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantModule, error) {
	query := `
		SELECT id, tenant_id, module_type, is_active, created_at, updated_at
		FROM tenant_modules
		WHERE tenant_id = $1
		ORDER BY module_type
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []*models.TenantModule
	for rows.Next() {
		module := &models.TenantModule{}
		if err := rows.Scan(&module.ID, &module.TenantID, &module.ModuleType, &module.IsActive, &module.CreatedAt, &module.UpdatedAt); err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

func (r *tenantModuleRepo) ListActiveTypes(ctx context.Context, tenantID uuid.UUID) ([]models.ModuleType, error) {
	query := `
		SELECT module_type
		FROM tenant_modules
		WHERE tenant_id = $1 AND is_active = TRUE
		ORDER BY module_type
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.ModuleType
	for rows.Next() {
		var moduleType models.ModuleType
		if err := rows.Scan(&moduleType); err != nil {
			return nil, err
		}
		types = append(types, moduleType)
	}
	return types, rows.Err()
}

func (r *tenantModuleRepo) SetActive(ctx context.Context, tenantID uuid.UUID, moduleType models.ModuleType, active bool) error {
	query := `
		UPDATE tenant_modules
		SET is_active = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND module_type = $3
	`
	_, err := r.db.Exec(ctx, query, active, tenantID, moduleType)
	return err
}
