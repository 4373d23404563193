package handlers

import (
	"net/http"
	"time"

	"wegroup/internal/common"
	"wegroup/internal/middleware"
	"wegroup/internal/models"
	"wegroup/internal/repositories"
	"wegroup/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const attachmentURLExpiry = 15 * time.Minute

// RFQHandlers handles RFQ HTTP endpoints
type RFQHandlers struct {
	workflowSvc services.WorkflowService
	rfqRepo     repositories.RFQRepository
	storageSvc  services.StorageService
}

// NewRFQHandlers creates a new RFQ handlers instance
func NewRFQHandlers(workflowSvc services.WorkflowService, rfqRepo repositories.RFQRepository, storageSvc services.StorageService) *RFQHandlers {
	return &RFQHandlers{
		workflowSvc: workflowSvc,
		rfqRepo:     rfqRepo,
		storageSvc:  storageSvc,
	}
}

// CreateRFQ creates a draft RFQ linked to an existing customer request
func (h *RFQHandlers) CreateRFQ(c echo.Context) error {
	session := middleware.SessionFromContext(c.Request().Context())

	var input services.CreateRFQInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if input.RequestID == uuid.Nil {
		return common.SendValidationError(c, "request_id", "request_id is required")
	}

	rfq, err := h.workflowSvc.CreateRFQ(c.Request().Context(), session, &input)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusCreated, rfq)
}

// GetRFQ returns an RFQ scoped to the caller's tenant
func (h *RFQHandlers) GetRFQ(c echo.Context) error {
	session := middleware.SessionFromContext(c.Request().Context())

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	rfq, err := h.workflowSvc.GetRFQ(c.Request().Context(), session, id)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, rfq)
}

// PublishRFQ moves a draft RFQ to PUBLISHED and cascades the parent request
// to RFQ_CREATED. Override fields left out of the body keep their stored
// values. Requires the super_admin role.
func (h *RFQHandlers) PublishRFQ(c echo.Context) error {
	session := middleware.SessionFromContext(c.Request().Context())

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var overrides models.PublishOverrides
	if err := c.Bind(&overrides); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	rfq, err := h.workflowSvc.Publish(c.Request().Context(), session, id, &overrides)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, rfq)
}

// UploadAttachment stores an RFQ document in object storage and records the
// object name on the RFQ. Storage only; nothing parses the document.
func (h *RFQHandlers) UploadAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	session := middleware.SessionFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	// Visibility check before touching storage.
	if _, err := h.workflowSvc.GetRFQ(ctx, session, id); err != nil {
		return writeWorkflowError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName, err := h.storageSvc.UploadAttachment(ctx, session.TenantID, id, file.Filename, src, file.Size, contentType)
	if err != nil {
		return common.SendServerError(c, "Failed to store attachment")
	}
	if err := h.rfqRepo.SetAttachment(ctx, session.TenantID, id, objectName); err != nil {
		return common.SendServerError(c, "Failed to record attachment")
	}

	return c.JSON(http.StatusCreated, map[string]string{"object": objectName})
}

// DeleteAttachment removes the stored document and clears the RFQ's reference
func (h *RFQHandlers) DeleteAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	session := middleware.SessionFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	rfq, err := h.workflowSvc.GetRFQ(ctx, session, id)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	if rfq.AttachmentObject == nil {
		return common.SendNotFoundError(c, "Attachment")
	}

	if err := h.storageSvc.DeleteAttachment(ctx, *rfq.AttachmentObject); err != nil {
		return common.SendServerError(c, "Failed to delete attachment")
	}
	if err := h.rfqRepo.ClearAttachment(ctx, session.TenantID, id); err != nil {
		return common.SendServerError(c, "Failed to clear attachment")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetAttachmentURL returns a presigned download URL for the RFQ's attachment
func (h *RFQHandlers) GetAttachmentURL(c echo.Context) error {
	ctx := c.Request().Context()
	session := middleware.SessionFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	rfq, err := h.workflowSvc.GetRFQ(ctx, session, id)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	if rfq.AttachmentObject == nil {
		return common.SendNotFoundError(c, "Attachment")
	}

	url, err := h.storageSvc.GetPresignedURL(*rfq.AttachmentObject, attachmentURLExpiry)
	if err != nil {
		return common.SendServerError(c, "Failed to sign URL")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
