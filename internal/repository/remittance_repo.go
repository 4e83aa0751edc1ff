package repository

import (
	"context"
	"time"

	"proptrust/internal/model"

	"gorm.io/gorm"
)

// TaxRemittanceRepository serves the remittance cron: pending rows whose
// retry window has arrived, plus the status updates the cron writes back.
type TaxRemittanceRepository interface {
	ListPendingRetries(ctx context.Context, before time.Time, limit int) ([]model.TaxRemittance, error)
	Update(ctx context.Context, r *model.TaxRemittance) error
}

type remittanceRepo struct{ db *gorm.DB }

func NewTaxRemittanceRepository(db *gorm.DB) TaxRemittanceRepository {
	return &remittanceRepo{db: db}
}

func (r *remittanceRepo) ListPendingRetries(ctx context.Context, before time.Time, limit int) ([]model.TaxRemittance, error) {
	var remits []model.TaxRemittance
	err := r.db.WithContext(ctx).
		Where("status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)", model.RemittancePending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&remits).Error
	return remits, err
}

func (r *remittanceRepo) Update(ctx context.Context, rem *model.TaxRemittance) error {
	return r.db.WithContext(ctx).Save(rem).Error
}
