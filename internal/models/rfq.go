package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RFQStatusDraft     = "DRAFT"
	RFQStatusPublished = "PUBLISHED"
)

type RFQ struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	TenantID         uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	RequestID        uuid.UUID   `json:"request_id" db:"request_id"`
	Status           string      `json:"status" db:"status"`
	Deadline         *time.Time  `json:"deadline,omitempty" db:"deadline"`
	SupplierIDs      []uuid.UUID `json:"supplier_ids,omitempty" db:"supplier_ids"`
	Requirements     *string     `json:"requirements,omitempty" db:"requirements"`
	AttachmentObject *string     `json:"attachment_object,omitempty" db:"attachment_object"`
	PublishedAt      *time.Time  `json:"published_at,omitempty" db:"published_at"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// PublishOverrides carries optional fields merged into an RFQ at publish time.
// Nil fields keep their prior value (partial-update semantics).
type PublishOverrides struct {
	Deadline     *time.Time  `json:"deadline,omitempty"`
	SupplierIDs  []uuid.UUID `json:"supplier_ids,omitempty"`
	Requirements *string     `json:"requirements,omitempty"`
}
