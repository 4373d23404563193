package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer request lifecycle. A request either goes straight to SUBMITTED, or
// is published as an RFQ, which forces the request into RFQ_CREATED.
const (
	RequestStatusDraft      = "DRAFT"
	RequestStatusSubmitted  = "SUBMITTED"
	RequestStatusPublished  = "PUBLISHED"
	RequestStatusRFQCreated = "RFQ_CREATED"
)

type CustomerRequest struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	CustomerRef *string    `json:"customer_ref,omitempty" db:"customer_ref"`
	Title       string     `json:"title" db:"title"`
	Details     *string    `json:"details,omitempty" db:"details"`
	Status      string     `json:"status" db:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
