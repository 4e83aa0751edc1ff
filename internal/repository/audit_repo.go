package repository

import (
	"context"

	"proptrust/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogRepository is write-once, read-many. Audit rows tied to a mutation
// are created inside the mutation's transaction by TrustAccountRepository;
// Create here exists for actions with no aggregate write of their own (e.g. a
// remittance confirmation from the cron).
type AuditLogRepository interface {
	Create(ctx context.Context, e *model.AuditLogEntry) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.AuditLogEntry, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, e *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.AuditLogEntry, error) {
	var logs []model.AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("trust_account_id = ?", accountID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
