package handlers

import (
	"net/http"

	"wegroup/internal/common"
	"wegroup/internal/models"
	"wegroup/internal/repositories"
	"wegroup/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RoleHandlers handles role and role-assignment HTTP requests
type RoleHandlers struct {
	roleRepo    repositories.RoleRepository
	rbacSvc     services.RBACService
	provisioner services.ProvisioningService
}

// NewRoleHandlers creates a new role handlers instance
func NewRoleHandlers(roleRepo repositories.RoleRepository, rbacSvc services.RBACService, provisioner services.ProvisioningService) *RoleHandlers {
	return &RoleHandlers{
		roleRepo:    roleRepo,
		rbacSvc:     rbacSvc,
		provisioner: provisioner,
	}
}

func tenantFromRequest(c echo.Context) (uuid.UUID, error) {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}
	return tenantID, nil
}

// CreateRoleRequest represents the custom role creation payload
type CreateRoleRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// CreateRole adds a custom role to the caller's tenant. Creating a role whose
// name already exists in the tenant is a no-op, matching provisioning.
func (h *RoleHandlers) CreateRole(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return err
	}

	var req CreateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	role := &models.Role{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.roleRepo.Upsert(c.Request().Context(), role); err != nil {
		return common.SendServerError(c, "Failed to create role")
	}

	created, err := h.roleRepo.GetByName(c.Request().Context(), tenantID, req.Name)
	if err != nil {
		return common.SendServerError(c, "Failed to load role")
	}
	return c.JSON(http.StatusCreated, created)
}

// ListRoles returns the roles of the caller's tenant
func (h *RoleHandlers) ListRoles(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return err
	}

	limit, offset := common.ValidatePaginationParams(0, 0)
	roles, err := h.roleRepo.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list roles")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"roles": roles})
}

// ProvisionSystemRoles re-runs system role provisioning for the tenant.
// Idempotent: repeated calls leave one row per system role.
func (h *RoleHandlers) ProvisionSystemRoles(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return err
	}

	if err := h.provisioner.EnsureSystemRoles(c.Request().Context(), tenantID); err != nil {
		return common.SendServerError(c, "Failed to provision system roles")
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignRoleRequest represents the role assignment payload
type AssignRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	RoleID string `json:"role_id" validate:"required"`
}

// AssignRole links a user to a role. Assigning an already-held role succeeds.
func (h *RoleHandlers) AssignRole(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return err
	}

	var req AssignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return common.SendValidationError(c, "user_id", err.Error())
	}
	roleID, err := common.ValidateUUID(req.RoleID, "role_id")
	if err != nil {
		return common.SendValidationError(c, "role_id", err.Error())
	}

	if err := h.rbacSvc.AssignRole(c.Request().Context(), tenantID, userID, roleID); err != nil {
		return common.SendServerError(c, "Failed to assign role")
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveRole unlinks a user from a role
func (h *RoleHandlers) RemoveRole(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return err
	}

	userID, err := common.ValidateUUID(c.Param("userId"), "userId")
	if err != nil {
		return common.SendValidationError(c, "userId", err.Error())
	}
	roleID, err := common.ValidateUUID(c.Param("roleId"), "roleId")
	if err != nil {
		return common.SendValidationError(c, "roleId", err.Error())
	}

	if err := h.rbacSvc.RemoveRole(c.Request().Context(), tenantID, userID, roleID); err != nil {
		return common.SendServerError(c, "Failed to remove role")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetUserRoles resolves a user's effective role set within the tenant
func (h *RoleHandlers) GetUserRoles(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return err
	}

	userID, err := common.ValidateUUID(c.Param("userId"), "userId")
	if err != nil {
		return common.SendValidationError(c, "userId", err.Error())
	}

	roles, err := h.rbacSvc.ResolveEffectiveRoles(c.Request().Context(), tenantID, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to resolve roles")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"roles":   roles,
	})
}
