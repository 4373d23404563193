package services

import (
	"context"
	"errors"
	"log"
	"time"

	"wegroup/internal/common"
	"wegroup/internal/models"
	"wegroup/internal/repositories"

	"github.com/google/uuid"
)

// WorkflowService owns the submit/publish transitions shared by customer
// requests and RFQs. Every mutating operation goes through the authorization
// gate first, then performs its status change as a conditional update so the
// precondition check and the write are atomic.
type WorkflowService interface {
	CreateRequest(ctx context.Context, session Session, req *CreateRequestInput) (*models.CustomerRequest, error)
	GetRequest(ctx context.Context, session Session, requestID uuid.UUID) (*models.CustomerRequest, error)
	ListRequests(ctx context.Context, session Session, limit, offset int) ([]*models.CustomerRequest, error)
	// Submit moves a request DRAFT -> SUBMITTED and stamps submitted_at.
	// Submitting twice yields InvalidTransitionError: retries are not
	// idempotent, callers treat "current == SUBMITTED" as already achieved.
	Submit(ctx context.Context, session Session, requestID uuid.UUID) (*models.CustomerRequest, error)

	CreateRFQ(ctx context.Context, session Session, req *CreateRFQInput) (*models.RFQ, error)
	GetRFQ(ctx context.Context, session Session, rfqID uuid.UUID) (*models.RFQ, error)
	// Publish moves an RFQ DRAFT -> PUBLISHED, merges overrides without
	// touching fields not overridden, and cascades the parent request to
	// RFQ_CREATED in the same transaction. Requires the super_admin role.
	Publish(ctx context.Context, session Session, rfqID uuid.UUID, overrides *models.PublishOverrides) (*models.RFQ, error)
}

type CreateRequestInput struct {
	Title       string  `json:"title"`
	Details     *string `json:"details,omitempty"`
	CustomerRef *string `json:"customer_ref,omitempty"`
}

type CreateRFQInput struct {
	RequestID    uuid.UUID   `json:"request_id"`
	Deadline     *string     `json:"deadline,omitempty"`
	SupplierIDs  []uuid.UUID `json:"supplier_ids,omitempty"`
	Requirements *string     `json:"requirements,omitempty"`
}

type workflowService struct {
	requestRepo repositories.RequestRepository
	rfqRepo     repositories.RFQRepository
	authzSvc    AuthzService
	auditSvc    AuditLogsService
}

func NewWorkflowService(requestRepo repositories.RequestRepository, rfqRepo repositories.RFQRepository, authzSvc AuthzService, auditSvc AuditLogsService) WorkflowService {
	return &workflowService{
		requestRepo: requestRepo,
		rfqRepo:     rfqRepo,
		authzSvc:    authzSvc,
		auditSvc:    auditSvc,
	}
}

func (s *workflowService) gate(ctx context.Context, session Session, req Requirement, record string) (Decision, error) {
	decision, err := s.authzSvc.Authorize(ctx, session, req)
	if err != nil {
		return decision, err
	}
	if !decision.Allowed {
		s.logAudit(ctx, session.TenantID, "workflow", record, models.ActionDenied, session.UserID, models.JSONB{
			"reason": string(decision.Reason),
		})
		return decision, decision.Err()
	}
	return decision, nil
}

func (s *workflowService) logAudit(ctx context.Context, tenantID uuid.UUID, table, record, action string, userID uuid.UUID, data models.JSONB) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogActivity(ctx, tenantID, table, record, action, &userID, data); err != nil {
		// Audit failures never fail the operation they describe.
		log.Printf("failed to write audit entry for %s/%s: %v", table, record, err)
	}
}

func (s *workflowService) CreateRequest(ctx context.Context, session Session, req *CreateRequestInput) (*models.CustomerRequest, error) {
	decision, err := s.gate(ctx, session, RequireAuthenticated(), "create")
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	request := &models.CustomerRequest{
		ID:          uuid.New(),
		TenantID:    decision.TenantID,
		CustomerRef: req.CustomerRef,
		Title:       req.Title,
		Details:     req.Details,
		Status:      models.RequestStatusDraft,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, common.WrapStore("create request", err)
	}

	s.logAudit(ctx, decision.TenantID, "customer_requests", request.ID.String(), models.ActionInsert, session.UserID, nil)
	return request, nil
}

func (s *workflowService) GetRequest(ctx context.Context, session Session, requestID uuid.UUID) (*models.CustomerRequest, error) {
	decision, err := s.gate(ctx, session, RequireAuthenticated(), requestID.String())
	if err != nil {
		return nil, err
	}

	// Lookup is tenant-scoped: an entity owned by another tenant is
	// indistinguishable from one that does not exist.
	request, err := s.requestRepo.GetByID(ctx, decision.TenantID, requestID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapStore("get request", err)
	}
	return request, nil
}

func (s *workflowService) ListRequests(ctx context.Context, session Session, limit, offset int) ([]*models.CustomerRequest, error) {
	decision, err := s.gate(ctx, session, RequireAuthenticated(), "list")
	if err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.List(ctx, decision.TenantID, limit, offset)
	if err != nil {
		return nil, common.WrapStore("list requests", err)
	}
	return requests, nil
}

func (s *workflowService) Submit(ctx context.Context, session Session, requestID uuid.UUID) (*models.CustomerRequest, error) {
	decision, err := s.gate(ctx, session, RequireAuthenticated(), requestID.String())
	if err != nil {
		return nil, err
	}

	request, err := s.requestRepo.SubmitIfDraft(ctx, decision.TenantID, requestID)
	if err == nil {
		s.logAudit(ctx, decision.TenantID, "customer_requests", requestID.String(), models.ActionTransition, session.UserID, models.JSONB{
			"from": models.RequestStatusDraft,
			"to":   models.RequestStatusSubmitted,
		})
		return request, nil
	}
	if !repositories.IsNoRows(err) {
		return nil, common.WrapStore("submit request", err)
	}

	// The conditional update matched nothing: either the entity is missing
	// (or belongs to another tenant) or it already left DRAFT. Distinguish
	// with a follow-up read so the caller learns the current status.
	current, getErr := s.requestRepo.GetByID(ctx, decision.TenantID, requestID)
	if getErr != nil {
		if repositories.IsNoRows(getErr) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapStore("submit request", getErr)
	}
	return nil, &common.InvalidTransitionError{
		Entity:    "customer_request",
		Attempted: models.RequestStatusSubmitted,
		Current:   current.Status,
	}
}

func (s *workflowService) CreateRFQ(ctx context.Context, session Session, req *CreateRFQInput) (*models.RFQ, error) {
	decision, err := s.gate(ctx, session, RequireAuthenticated(), "create-rfq")
	if err != nil {
		return nil, err
	}
	if req.RequestID == uuid.Nil {
		return nil, errors.New("request_id is required")
	}
	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return nil, errors.New("deadline must be an RFC3339 timestamp")
		}
		deadline = &parsed
	}

	// The parent must exist within the caller's tenant.
	if _, err := s.requestRepo.GetByID(ctx, decision.TenantID, req.RequestID); err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapStore("get parent request", err)
	}

	rfq := &models.RFQ{
		ID:           uuid.New(),
		TenantID:     decision.TenantID,
		RequestID:    req.RequestID,
		Status:       models.RFQStatusDraft,
		Deadline:     deadline,
		SupplierIDs:  req.SupplierIDs,
		Requirements: req.Requirements,
	}
	if err := s.rfqRepo.Create(ctx, rfq); err != nil {
		return nil, common.WrapStore("create rfq", err)
	}

	s.logAudit(ctx, decision.TenantID, "rfqs", rfq.ID.String(), models.ActionInsert, session.UserID, nil)
	return rfq, nil
}

func (s *workflowService) GetRFQ(ctx context.Context, session Session, rfqID uuid.UUID) (*models.RFQ, error) {
	decision, err := s.gate(ctx, session, RequireAuthenticated(), rfqID.String())
	if err != nil {
		return nil, err
	}
	rfq, err := s.rfqRepo.GetByID(ctx, decision.TenantID, rfqID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapStore("get rfq", err)
	}
	return rfq, nil
}

func (s *workflowService) Publish(ctx context.Context, session Session, rfqID uuid.UUID, overrides *models.PublishOverrides) (*models.RFQ, error) {
	decision, err := s.gate(ctx, session, RequireRole(models.RoleSuperAdmin), rfqID.String())
	if err != nil {
		return nil, err
	}

	rfq, err := s.rfqRepo.PublishIfDraft(ctx, decision.TenantID, rfqID, overrides)
	if err == nil {
		s.logAudit(ctx, decision.TenantID, "rfqs", rfqID.String(), models.ActionTransition, session.UserID, models.JSONB{
			"from":    models.RFQStatusDraft,
			"to":      models.RFQStatusPublished,
			"cascade": models.RequestStatusRFQCreated,
		})
		return rfq, nil
	}

	switch {
	case repositories.IsNoRows(err):
		current, getErr := s.rfqRepo.GetByID(ctx, decision.TenantID, rfqID)
		if getErr != nil {
			if repositories.IsNoRows(getErr) {
				return nil, common.ErrNotFound
			}
			return nil, common.WrapStore("publish rfq", getErr)
		}
		return nil, &common.InvalidTransitionError{
			Entity:    "rfq",
			Attempted: models.RFQStatusPublished,
			Current:   current.Status,
		}
	case errors.Is(err, repositories.ErrCascadeFailed):
		// The transaction rolled back; the RFQ kept its pre-publish status.
		// Report the parent's current status so the caller sees why.
		attempted := models.RequestStatusRFQCreated
		current := "unknown"
		if rfqRow, getErr := s.rfqRepo.GetByID(ctx, decision.TenantID, rfqID); getErr == nil {
			if parent, getErr := s.requestRepo.GetByID(ctx, decision.TenantID, rfqRow.RequestID); getErr == nil {
				current = parent.Status
			}
		}
		return nil, &common.InvalidTransitionError{
			Entity:    "customer_request",
			Attempted: attempted,
			Current:   current,
		}
	default:
		return nil, common.WrapStore("publish rfq", err)
	}
}
