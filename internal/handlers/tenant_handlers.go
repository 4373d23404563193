package handlers

import (
	"net/http"

	"wegroup/internal/common"
	"wegroup/internal/models"
	"wegroup/internal/repositories"
	"wegroup/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
	userRepo      repositories.UserRepository
	rbacSvc       services.RBACService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService, userRepo repositories.UserRepository, rbacSvc services.RBACService) *TenantHandlers {
	return &TenantHandlers{
		tenantService: tenantService,
		userRepo:      userRepo,
		rbacSvc:       rbacSvc,
	}
}

// CreateTenant handles tenant onboarding (super admin only, enforced at the route)
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Domain, "domain"); err != nil {
		return common.SendValidationError(c, "domain", err.Error())
	}

	tenant, err := h.tenantService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendServerError(c, "Failed to create tenant")
	}
	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant returns a tenant by id
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenant, err := h.tenantService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendNotFoundError(c, "Tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

// LookupTenant resolves a tenant by domain or subdomain
func (h *TenantHandlers) LookupTenant(c echo.Context) error {
	domain := c.QueryParam("domain")
	if domain == "" {
		return common.SendValidationError(c, "domain", "domain query parameter is required")
	}

	tenant, err := h.tenantService.LookupByDomain(c.Request().Context(), domain)
	if err != nil {
		return common.SendNotFoundError(c, "Tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

// ListTenantsRequest represents query parameters for listing tenants
type ListTenantsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListTenants handles getting a list of tenants (super admin only)
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	var req ListTenantsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(req.Limit, req.Offset)

	tenants, err := h.tenantService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list tenants")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   limit,
		"offset":  offset,
	})
}

// ListModules returns the active module types for a tenant
func (h *TenantHandlers) ListModules(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	moduleTypes, err := h.tenantService.ListActiveModules(c.Request().Context(), id)
	if err != nil {
		return common.SendServerError(c, "Failed to list modules")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenant_id": id,
		"modules":   moduleTypes,
	})
}

// SetModuleRequest represents the module toggle payload
type SetModuleRequest struct {
	Active bool `json:"active"`
}

// SetModule toggles a feature module for a tenant
func (h *TenantHandlers) SetModule(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	moduleType := models.ModuleType(c.Param("module"))
	if moduleType == "" {
		return common.SendValidationError(c, "module", "module type is required")
	}

	var req SetModuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.tenantService.SetModuleActive(c.Request().Context(), id, moduleType, req.Active); err != nil {
		return common.SendServerError(c, "Failed to update module")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenant_id": id,
		"module":    moduleType,
		"active":    req.Active,
	})
}

// AddMemberRequest represents the membership payload
type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

// AddMember binds a pre-tenant user to the tenant and grants the default
// employee role. Tenant match is enforced at the route.
func (h *TenantHandlers) AddMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return common.SendValidationError(c, "user_id", err.Error())
	}

	current, err := h.userRepo.GetTenantIDByUserID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}
	if current != nil && *current != id {
		return echo.NewHTTPError(http.StatusConflict, "User already belongs to another tenant")
	}
	if current == nil {
		if err := h.userRepo.AssignTenant(ctx, userID, id); err != nil {
			return common.SendServerError(c, "Failed to add member")
		}
	}

	// Role assignment is idempotent, so re-adding an existing member is a no-op.
	if err := h.rbacSvc.AssignRoleByName(ctx, id, userID, models.RoleEmployee); err != nil {
		c.Logger().Warnf("failed to assign default role to %s: %v", userID, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenant_id": id,
		"user_id":   userID,
	})
}

// DeactivateTenant flags a tenant inactive; tenants are never hard-deleted
func (h *TenantHandlers) DeactivateTenant(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.tenantService.Deactivate(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "Failed to deactivate tenant")
	}
	return c.NoContent(http.StatusNoContent)
}
