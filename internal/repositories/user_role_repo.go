package repositories

import (
	"context"

	"wegroup/internal/models"

	"github.com/google/uuid"
)

type UserRoleRepository interface {
	// Assign links a user to a role. Assigning an already-held role is a
	// no-op success, enforced by the (user_id, role_id) conflict target. The
	// role must belong to the given tenant or the insert matches nothing.
	Assign(ctx context.Context, tenantID, userID, roleID uuid.UUID) error
	Remove(ctx context.Context, tenantID, userID, roleID uuid.UUID) error
	// ListRolesByUser resolves the user's effective role set within a tenant.
	ListRolesByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Role, error)
	ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.UserRole, error)
}

type userRoleRepo struct {
	db DB
}

func NewUserRoleRepo(db DB) UserRoleRepository {
	return &userRoleRepo{db: db}
}

func (r *userRoleRepo) Assign(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	query := `
		INSERT INTO user_roles (id, user_id, role_id, created_at)
		SELECT $1, $2, $3, NOW()
		WHERE EXISTS (SELECT 1 FROM roles WHERE id = $3 AND tenant_id = $4)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), userID, roleID, tenantID)
	return err
}

func (r *userRoleRepo) Remove(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	query := `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = $2
		AND EXISTS (SELECT 1 FROM roles WHERE id = $2 AND tenant_id = $3)
	`
	_, err := r.db.Exec(ctx, query, userID, roleID, tenantID)
	return err
}

func (r *userRoleRepo) ListRolesByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Role, error) {
	query := `
		SELECT ro.id, ro.tenant_id, ro.name, ro.description, ro.created_at, ro.updated_at
		FROM user_roles ur
		JOIN roles ro ON ur.role_id = ro.id
		WHERE ro.tenant_id = $1 AND ur.user_id = $2
		ORDER BY ro.name
	`
	rows, err := r.db.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *userRoleRepo) ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.UserRole, error) {
	query := `
		SELECT ur.id, ur.user_id, ur.role_id, ur.created_at
		FROM user_roles ur
		JOIN roles ro ON ur.role_id = ro.id
		WHERE ro.tenant_id = $1 AND ur.role_id = $2
		ORDER BY ur.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userRoles []*models.UserRole
	for rows.Next() {
		userRole := &models.UserRole{}
		if err := rows.Scan(&userRole.ID, &userRole.UserID, &userRole.RoleID, &userRole.CreatedAt); err != nil {
			return nil, err
		}
		userRoles = append(userRoles, userRole)
	}
	return userRoles, rows.Err()
}
