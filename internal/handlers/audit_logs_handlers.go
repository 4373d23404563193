package handlers

import (
	"net/http"

	"wegroup/internal/common"
	"wegroup/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers exposes the tenant's audit trail
type AuditLogsHandlers struct {
	auditSvc services.AuditLogsService
}

// NewAuditLogsHandlers creates a new audit logs handlers instance
func NewAuditLogsHandlers(auditSvc services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditSvc: auditSvc}
}

// ListAuditLogsQuery represents pagination parameters
type ListAuditLogsQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListAuditLogs lists the tenant's audit entries, newest first
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var q ListAuditLogsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(q.Limit, q.Offset)

	logs, err := h.auditSvc.ListAuditLogs(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list audit logs")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetEntityHistory lists the audit entries for one record
func (h *AuditLogsHandlers) GetEntityHistory(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tableName := c.Param("table")
	recordID := c.Param("record")
	if tableName == "" || recordID == "" {
		return common.SendValidationError(c, "table", "table and record are required")
	}

	logs, err := h.auditSvc.GetEntityHistory(c.Request().Context(), tenantID, tableName, recordID, 50, 0)
	if err != nil {
		return common.SendServerError(c, "Failed to load entity history")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"audit_logs": logs})
}
