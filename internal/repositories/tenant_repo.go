package repositories

import (
	"context"
	"encoding/json"

	"wegroup/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	// CreateWithModules inserts the tenant and its default module rows in a
	// single transaction. Either everything lands or nothing does.
	CreateWithModules(ctx context.Context, tenant *models.Tenant, moduleTypes []models.ModuleType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	// GetByDomain matches either the primary domain or the subdomain and
	// returns the first match. Domain uniqueness is assumed, not enforced here.
	GetByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepo(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, domain, subdomain, settings, status, created_at, updated_at`

func (r *tenantRepo) CreateWithModules(ctx context.Context, tenant *models.Tenant, moduleTypes []models.ModuleType) error {
	settings, err := json.Marshal(tenant.Settings)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (id, name, domain, subdomain, settings, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, tenant.ID, tenant.Name, tenant.Domain, tenant.Subdomain, settings, tenant.Status)
	if err != nil {
		return err
	}

	for _, moduleType := range moduleTypes {
		_, err = tx.Exec(ctx, `
			INSERT INTO tenant_modules (id, tenant_id, module_type, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		`, uuid.New(), tenant.ID, moduleType)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Domain, &tenant.Subdomain, &tenant.Settings, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE domain = $1 OR subdomain = $1
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, domain).Scan(&tenant.ID, &tenant.Name, &tenant.Domain, &tenant.Subdomain, &tenant.Settings, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	settings, err := json.Marshal(tenant.Settings)
	if err != nil {
		return err
	}
	query := `
		UPDATE tenants
		SET name = $1, domain = $2, subdomain = $3, settings = $4, status = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err = r.db.Exec(ctx, query, tenant.Name, tenant.Domain, tenant.Subdomain, settings, tenant.Status, tenant.ID)
	return err
}

func (r *tenantRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tenants
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, models.TenantStatusInactive, id)
	return err
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Domain, &tenant.Subdomain, &tenant.Settings, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
