package repositories

import (
	"context"
	"errors"

	"wegroup/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrCascadeFailed reports that the parent request update inside a publish
// transaction matched no row. The whole transaction is rolled back.
var ErrCascadeFailed = errors.New("parent request cascade matched no row")

type RFQRepository interface {
	Create(ctx context.Context, rfq *models.RFQ) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RFQ, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RFQ, error)
	SetAttachment(ctx context.Context, tenantID, id uuid.UUID, objectName string) error
	ClearAttachment(ctx context.Context, tenantID, id uuid.UUID) error
	// PublishIfDraft moves the RFQ DRAFT -> PUBLISHED and cascades the parent
	// request to RFQ_CREATED inside one transaction. Override fields are
	// merged with COALESCE: nil overrides keep the stored value. Returns
	// pgx.ErrNoRows when the RFQ precondition fails and ErrCascadeFailed when
	// the parent update matches nothing; in both cases nothing is committed.
	PublishIfDraft(ctx context.Context, tenantID, id uuid.UUID, overrides *models.PublishOverrides) (*models.RFQ, error)
}

type rfqRepo struct {
	db DB
}

func NewRFQRepo(db DB) RFQRepository {
	return &rfqRepo{db: db}
}

const rfqColumns = `id, tenant_id, request_id, status, deadline, supplier_ids, requirements, attachment_object, published_at, created_at, updated_at`

func (r *rfqRepo) Create(ctx context.Context, rfq *models.RFQ) error {
	query := `
		INSERT INTO rfqs (id, tenant_id, request_id, status, deadline, supplier_ids, requirements, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, rfq.ID, rfq.TenantID, rfq.RequestID, rfq.Status, rfq.Deadline, rfq.SupplierIDs, rfq.Requirements)
	return err
}

func (r *rfqRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RFQ, error) {
	rfq := &models.RFQ{}
	query := `
		SELECT ` + rfqColumns + `
		FROM rfqs
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&rfq.ID, &rfq.TenantID, &rfq.RequestID, &rfq.Status, &rfq.Deadline, &rfq.SupplierIDs, &rfq.Requirements, &rfq.AttachmentObject, &rfq.PublishedAt, &rfq.CreatedAt, &rfq.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rfq, nil
}

func (r *rfqRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RFQ, error) {
	query := `
		SELECT ` + rfqColumns + `
		FROM rfqs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rfqs []*models.RFQ
	for rows.Next() {
		rfq := &models.RFQ{}
		if err := rows.Scan(&rfq.ID, &rfq.TenantID, &rfq.RequestID, &rfq.Status, &rfq.Deadline, &rfq.SupplierIDs, &rfq.Requirements, &rfq.AttachmentObject, &rfq.PublishedAt, &rfq.CreatedAt, &rfq.UpdatedAt); err != nil {
			return nil, err
		}
		rfqs = append(rfqs, rfq)
	}
	return rfqs, rows.Err()
}

func (r *rfqRepo) SetAttachment(ctx context.Context, tenantID, id uuid.UUID, objectName string) error {
	query := `
		UPDATE rfqs
		SET attachment_object = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, objectName, tenantID, id)
	return err
}

func (r *rfqRepo) ClearAttachment(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE rfqs
		SET attachment_object = NULL, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *rfqRepo) PublishIfDraft(ctx context.Context, tenantID, id uuid.UUID, overrides *models.PublishOverrides) (*models.RFQ, error) {
	if overrides == nil {
		overrides = &models.PublishOverrides{}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rfq := &models.RFQ{}
	query := `
		UPDATE rfqs
		SET status = $1,
		    published_at = NOW(),
		    deadline = COALESCE($2, deadline),
		    supplier_ids = COALESCE($3, supplier_ids),
		    requirements = COALESCE($4, requirements),
		    updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6 AND status = $7
		RETURNING ` + rfqColumns + `
	`
	err = tx.QueryRow(ctx, query, models.RFQStatusPublished, overrides.Deadline, overrides.SupplierIDs, overrides.Requirements, tenantID, id, models.RFQStatusDraft).
		Scan(&rfq.ID, &rfq.TenantID, &rfq.RequestID, &rfq.Status, &rfq.Deadline, &rfq.SupplierIDs, &rfq.Requirements, &rfq.AttachmentObject, &rfq.PublishedAt, &rfq.CreatedAt, &rfq.UpdatedAt)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE customer_requests
		SET status = $1, published_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND status IN ($4, $5)
	`, models.RequestStatusRFQCreated, tenantID, rfq.RequestID, models.RequestStatusDraft, models.RequestStatusPublished)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, ErrCascadeFailed
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rfq, nil
}

// IsNoRows reports whether err is the pgx no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
