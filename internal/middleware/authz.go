package middleware

import (
	"net/http"

	"wegroup/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthzMiddleware exposes the authorization gate as route middleware. Routes
// that need entity-level checks call the gate inside their service instead.
type AuthzMiddleware struct {
	authzSvc services.AuthzService
}

func NewAuthzMiddleware(authzSvc services.AuthzService) *AuthzMiddleware {
	return &AuthzMiddleware{authzSvc: authzSvc}
}

// RequireRole admits only callers holding the named role in their tenant.
func (m *AuthzMiddleware) RequireRole(roleName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			session := SessionFromContext(ctx)

			decision, err := m.authzSvc.Authorize(ctx, session, services.RequireRole(roleName))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Error checking permission")
			}
			if !decision.Allowed {
				if decision.Reason == services.DenyUnauthenticated {
					return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
				}
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}

			return next(c)
		}
	}
}

// RequireAuthenticated admits any caller with a valid session.
func (m *AuthzMiddleware) RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			session := SessionFromContext(ctx)

			decision, err := m.authzSvc.Authorize(ctx, session, services.RequireAuthenticated())
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Error checking permission")
			}
			if !decision.Allowed {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			return next(c)
		}
	}
}

// RequireTenantParam admits only callers whose session tenant matches the
// tenant id in the named path parameter, or who hold the cross-tenant
// override role. Routes addressing a tenant by id must carry this check.
func (m *AuthzMiddleware) RequireTenantParam(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID, err := uuid.Parse(c.Param(param))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid tenant id")
			}
			if err := m.check(c, services.RequireTenant(tenantID)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireTenantParamRole additionally demands the named role in the caller's
// own tenant.
func (m *AuthzMiddleware) RequireTenantParamRole(param, roleName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID, err := uuid.Parse(c.Param(param))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid tenant id")
			}
			if err := m.check(c, services.RequireTenantRole(tenantID, roleName)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func (m *AuthzMiddleware) check(c echo.Context, req services.Requirement) error {
	ctx := c.Request().Context()
	session := SessionFromContext(ctx)

	decision, err := m.authzSvc.Authorize(ctx, session, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error checking permission")
	}
	if !decision.Allowed {
		if decision.Reason == services.DenyUnauthenticated {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}
	return nil
}
