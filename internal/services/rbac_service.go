package services

import (
	"context"

	"wegroup/internal/models"
	"wegroup/internal/repositories"

	"github.com/google/uuid"
)

type RBACService interface {
	// AssignRole is idempotent; assigning an already-held role succeeds.
	AssignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error
	AssignRoleByName(ctx context.Context, tenantID, userID uuid.UUID, roleName string) error
	RemoveRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error
	// ResolveEffectiveRoles returns every role the user holds within the tenant.
	ResolveEffectiveRoles(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Role, error)
	HasRole(ctx context.Context, tenantID, userID uuid.UUID, roleName string) (bool, error)
}

type rbacService struct {
	userRoleRepo repositories.UserRoleRepository
	roleRepo     repositories.RoleRepository
}

func NewRBACService(userRoleRepo repositories.UserRoleRepository, roleRepo repositories.RoleRepository) RBACService {
	return &rbacService{
		userRoleRepo: userRoleRepo,
		roleRepo:     roleRepo,
	}
}

func (s *rbacService) AssignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	return s.userRoleRepo.Assign(ctx, tenantID, userID, roleID)
}

func (s *rbacService) AssignRoleByName(ctx context.Context, tenantID, userID uuid.UUID, roleName string) error {
	role, err := s.roleRepo.GetByName(ctx, tenantID, roleName)
	if err != nil {
		return err
	}
	return s.userRoleRepo.Assign(ctx, tenantID, userID, role.ID)
}

func (s *rbacService) RemoveRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	return s.userRoleRepo.Remove(ctx, tenantID, userID, roleID)
}

func (s *rbacService) ResolveEffectiveRoles(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Role, error) {
	return s.userRoleRepo.ListRolesByUser(ctx, tenantID, userID)
}

func (s *rbacService) HasRole(ctx context.Context, tenantID, userID uuid.UUID, roleName string) (bool, error) {
	roles, err := s.userRoleRepo.ListRolesByUser(ctx, tenantID, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}
