package repository

import (
	"context"
	"errors"

	"proptrust/internal/dto"
	"proptrust/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when an optimistic version check fails: the
// account row moved under us between read and write. The service layer
// translates this into its client-facing concurrency error and retries.
var ErrVersionConflict = errors.New("trust account version conflict")

type TrustAccountRepository interface {
	// Create opens the account, posts the opening ledger entry and writes the
	// audit row in one transaction.
	Create(ctx context.Context, acc *model.TrustAccount, opening *model.LedgerEntry, audit *model.AuditLogEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TrustAccount, error)
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID) (*model.TrustAccount, error)
	List(ctx context.Context, filter dto.TrustAccountFilter) ([]model.TrustAccount, int64, error)

	// ListEntries pages newest-first for display. ListEntriesAsc returns the
	// full ledger in creation order, which is the order balance math uses.
	ListEntries(ctx context.Context, accountID uuid.UUID, page, limit int) ([]model.LedgerEntry, int64, error)
	ListEntriesAsc(ctx context.Context, accountID uuid.UUID) ([]model.LedgerEntry, error)

	// AppendEntries atomically inserts the entries (with their running-balance
	// snapshots), any tax remittance rows, the audit row, and advances the
	// account aggregate — guarded by acc.Version. Returns ErrVersionConflict
	// when a concurrent append won the race; nothing is persisted in that case.
	AppendEntries(ctx context.Context, acc *model.TrustAccount, entries []*model.LedgerEntry, remits []*model.TaxRemittance, audit *model.AuditLogEntry) error

	// UpdateAccount persists non-ledger aggregate changes (workflow
	// transitions) with the same version guard and audit coupling.
	UpdateAccount(ctx context.Context, acc *model.TrustAccount, audit *model.AuditLogEntry) error

	// CloseAccount is UpdateAccount plus locking every settlement version of
	// the account, so closed figures cannot be recalculated.
	CloseAccount(ctx context.Context, acc *model.TrustAccount, audit *model.AuditLogEntry) error

	// SaveSettlement appends a new settlement version and the aggregate state
	// it implies (OPEN → SETTLED on the first calculation) in one transaction.
	SaveSettlement(ctx context.Context, rec *model.SettlementRecord, acc *model.TrustAccount, audit *model.AuditLogEntry) error
	LatestSettlement(ctx context.Context, accountID uuid.UUID) (*model.SettlementRecord, error)

	ListRemittances(ctx context.Context, accountID uuid.UUID) ([]model.TaxRemittance, error)
}

type trustRepo struct{ db *gorm.DB }

func NewTrustAccountRepository(db *gorm.DB) TrustAccountRepository { return &trustRepo{db: db} }

func (r *trustRepo) Create(ctx context.Context, acc *model.TrustAccount, opening *model.LedgerEntry, audit *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(acc).Error; err != nil {
			return err
		}
		opening.TrustAccountID = acc.ID
		if err := tx.Create(opening).Error; err != nil {
			return err
		}
		audit.TrustAccountID = acc.ID
		audit.EntityID = opening.ID
		return tx.Create(audit).Error
	})
}

func (r *trustRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TrustAccount, error) {
	var acc model.TrustAccount
	err := r.db.WithContext(ctx).First(&acc, id).Error
	return &acc, err
}

func (r *trustRepo) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) (*model.TrustAccount, error) {
	var acc model.TrustAccount
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).First(&acc).Error
	return &acc, err
}

func (r *trustRepo) List(ctx context.Context, filter dto.TrustAccountFilter) ([]model.TrustAccount, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.TrustAccount{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("buyer_name ILIKE ? OR seller_name ILIKE ? OR property_name ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []model.TrustAccount
	err := q.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&accounts).Error
	return accounts, total, err
}

func (r *trustRepo) ListEntries(ctx context.Context, accountID uuid.UUID, page, limit int) ([]model.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).Where("trust_account_id = ?", accountID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.LedgerEntry
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *trustRepo) ListEntriesAsc(ctx context.Context, accountID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("trust_account_id = ?", accountID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// advanceAccount performs the version-guarded write of the aggregate row.
// Zero rows affected means another writer got there first (or the account was
// locked between read and write) — the whole surrounding transaction aborts.
func advanceAccount(tx *gorm.DB, acc *model.TrustAccount) error {
	expected := acc.Version
	res := tx.Model(&model.TrustAccount{}).
		Where("id = ? AND version = ?", acc.ID, expected).
		Updates(map[string]interface{}{
			"running_balance":     acc.RunningBalance,
			"closing_balance":     acc.ClosingBalance,
			"status":              acc.Status,
			"workflow_state":      acc.WorkflowState,
			"locked":              acc.Locked,
			"lock_reason":         acc.LockReason,
			"tax_applied_version": acc.TaxAppliedVersion,
			"version":             expected + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	acc.Version = expected + 1
	return nil
}

func (r *trustRepo) AppendEntries(ctx context.Context, acc *model.TrustAccount, entries []*model.LedgerEntry, remits []*model.TaxRemittance, audit *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		for _, rem := range remits {
			if err := tx.Create(rem).Error; err != nil {
				return err
			}
		}
		if err := advanceAccount(tx, acc); err != nil {
			return err
		}
		if audit.EntityID == uuid.Nil && len(entries) > 0 {
			audit.EntityID = entries[0].ID
		}
		return tx.Create(audit).Error
	})
}

func (r *trustRepo) UpdateAccount(ctx context.Context, acc *model.TrustAccount, audit *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advanceAccount(tx, acc); err != nil {
			return err
		}
		return tx.Create(audit).Error
	})
}

func (r *trustRepo) CloseAccount(ctx context.Context, acc *model.TrustAccount, audit *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advanceAccount(tx, acc); err != nil {
			return err
		}
		if err := tx.Model(&model.SettlementRecord{}).
			Where("trust_account_id = ?", acc.ID).
			Update("locked", true).Error; err != nil {
			return err
		}
		return tx.Create(audit).Error
	})
}

func (r *trustRepo) SaveSettlement(ctx context.Context, rec *model.SettlementRecord, acc *model.TrustAccount, audit *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if err := advanceAccount(tx, acc); err != nil {
			return err
		}
		audit.EntityID = rec.ID
		return tx.Create(audit).Error
	})
}

func (r *trustRepo) LatestSettlement(ctx context.Context, accountID uuid.UUID) (*model.SettlementRecord, error) {
	var rec model.SettlementRecord
	err := r.db.WithContext(ctx).
		Where("trust_account_id = ?", accountID).
		Order("version DESC").
		First(&rec).Error
	return &rec, err
}

func (r *trustRepo) ListRemittances(ctx context.Context, accountID uuid.UUID) ([]model.TaxRemittance, error) {
	var remits []model.TaxRemittance
	err := r.db.WithContext(ctx).
		Where("trust_account_id = ?", accountID).
		Order("created_at ASC").
		Find(&remits).Error
	return remits, err
}
