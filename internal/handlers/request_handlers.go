package handlers

import (
	"errors"
	"net/http"

	"wegroup/internal/common"
	"wegroup/internal/middleware"
	"wegroup/internal/services"

	"github.com/labstack/echo/v4"
)

// RequestHandlers handles customer request HTTP endpoints
type RequestHandlers struct {
	workflowSvc services.WorkflowService
}

// NewRequestHandlers creates a new request handlers instance
func NewRequestHandlers(workflowSvc services.WorkflowService) *RequestHandlers {
	return &RequestHandlers{workflowSvc: workflowSvc}
}

// writeWorkflowError maps the core outcome taxonomy onto transport codes.
// This is the only place that translation happens.
func writeWorkflowError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return common.SendUnauthorizedError(c)
	case errors.Is(err, common.ErrForbidden):
		return common.SendForbiddenError(c)
	case errors.Is(err, common.ErrNotFound):
		return common.SendNotFoundError(c, "Entity")
	}
	if ite, ok := common.IsInvalidTransition(err); ok {
		return c.JSON(http.StatusConflict, common.CreateErrorResponse("INVALID_TRANSITION", ite.Error(), map[string]string{
			"attempted": ite.Attempted,
			"current":   ite.Current,
		}))
	}
	return common.SendServerError(c, "Operation failed")
}

// CreateRequest creates a draft customer request
func (h *RequestHandlers) CreateRequest(c echo.Context) error {
	session := middleware.SessionFromContext(c.Request().Context())

	var input services.CreateRequestInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(input.Title, "title"); err != nil {
		return common.SendValidationError(c, "title", err.Error())
	}

	request, err := h.workflowSvc.CreateRequest(c.Request().Context(), session, &input)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusCreated, request)
}

// GetRequest returns a customer request scoped to the caller's tenant
func (h *RequestHandlers) GetRequest(c echo.Context) error {
	session := middleware.SessionFromContext(c.Request().Context())

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	request, err := h.workflowSvc.GetRequest(c.Request().Context(), session, id)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, request)
}

// ListRequestsQuery represents pagination parameters
type ListRequestsQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListRequests lists the tenant's customer requests
func (h *RequestHandlers) ListRequests(c echo.Context) error {
	session := middleware.SessionFromContext(c.Request().Context())

	var q ListRequestsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(q.Limit, q.Offset)

	requests, err := h.workflowSvc.ListRequests(c.Request().Context(), session, limit, offset)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

// SubmitRequest moves a draft request to SUBMITTED. Submitting a non-draft
// request yields 409 with the attempted and current status.
func (h *RequestHandlers) SubmitRequest(c echo.Context) error {
	session := middleware.SessionFromContext(c.Request().Context())

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	request, err := h.workflowSvc.Submit(c.Request().Context(), session, id)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, request)
}
