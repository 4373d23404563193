package services

import (
	"context"
	"errors"
	"time"

	"wegroup/internal/models"
	"wegroup/internal/repositories"

	"github.com/google/uuid"
)

type AuditLogsService interface {
	LogActivity(ctx context.Context, tenantID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, data models.JSONB) error
	ListAuditLogs(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
	GetEntityHistory(ctx context.Context, tenantID uuid.UUID, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error)
	// PurgeOlderThan removes entries outside the retention window and returns
	// the number deleted. Called by the background scheduler.
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogsRepo: auditLogsRepo}
}

func (s *auditLogsService) LogActivity(ctx context.Context, tenantID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, data models.JSONB) error {
	if tableName == "" {
		return errors.New("table_name is required")
	}
	if action == "" {
		return errors.New("action is required")
	}

	entry := &models.AuditLog{
		ID:        uuid.New(),
		TenantID:  tenantID,
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		Data:      data,
		ChangedBy: changedBy,
	}
	return s.auditLogsRepo.Create(ctx, entry)
}

func (s *auditLogsService) ListAuditLogs(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.auditLogsRepo.List(ctx, tenantID, limit, offset)
}

func (s *auditLogsService) GetEntityHistory(ctx context.Context, tenantID uuid.UUID, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.auditLogsRepo.GetByRecord(ctx, tenantID, tableName, recordID, limit, offset)
}

func (s *auditLogsService) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.auditLogsRepo.DeleteOlderThan(ctx, cutoff)
}
