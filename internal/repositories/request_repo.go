package repositories

import (
	"context"

	"wegroup/internal/models"

	"github.com/google/uuid"
)

type RequestRepository interface {
	Create(ctx context.Context, request *models.CustomerRequest) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CustomerRequest, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.CustomerRequest, error)
	// SubmitIfDraft performs the DRAFT -> SUBMITTED transition as a single
	// conditional update. The status check and the write are one statement, so
	// two concurrent submits cannot both succeed. Returns pgx.ErrNoRows when
	// the precondition does not hold (wrong status or wrong tenant).
	SubmitIfDraft(ctx context.Context, tenantID, id uuid.UUID) (*models.CustomerRequest, error)
}

type requestRepo struct {
	db DB
}

func NewRequestRepo(db DB) RequestRepository {
	return &requestRepo{db: db}
}

const requestColumns = `id, tenant_id, customer_ref, title, details, status, submitted_at, published_at, created_at, updated_at`

func (r *requestRepo) Create(ctx context.Context, request *models.CustomerRequest) error {
	query := `
		INSERT INTO customer_requests (id, tenant_id, customer_ref, title, details, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, request.ID, request.TenantID, request.CustomerRef, request.Title, request.Details, request.Status)
	return err
}

func (r *requestRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CustomerRequest, error) {
	request := &models.CustomerRequest{}
	query := `
		SELECT ` + requestColumns + `
		FROM customer_requests
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&request.ID, &request.TenantID, &request.CustomerRef, &request.Title, &request.Details, &request.Status, &request.SubmittedAt, &request.PublishedAt, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *requestRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.CustomerRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM customer_requests
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.CustomerRequest
	for rows.Next() {
		request := &models.CustomerRequest{}
		if err := rows.Scan(&request.ID, &request.TenantID, &request.CustomerRef, &request.Title, &request.Details, &request.Status, &request.SubmittedAt, &request.PublishedAt, &request.CreatedAt, &request.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (r *requestRepo) SubmitIfDraft(ctx context.Context, tenantID, id uuid.UUID) (*models.CustomerRequest, error) {
	request := &models.CustomerRequest{}
	query := `
		UPDATE customer_requests
		SET status = $1, submitted_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND status = $4
		RETURNING ` + requestColumns + `
	`
	err := r.db.QueryRow(ctx, query, models.RequestStatusSubmitted, tenantID, id, models.RequestStatusDraft).
		Scan(&request.ID, &request.TenantID, &request.CustomerRef, &request.Title, &request.Details, &request.Status, &request.SubmittedAt, &request.PublishedAt, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}
