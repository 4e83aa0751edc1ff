package infra

import (
	"fmt"

	"proptrust/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches GORM
// cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Property{},
		&model.TrustAccount{},
		&model.LedgerEntry{},
		&model.SettlementRecord{},
		&model.TaxRemittance{},
		&model.AuditLogEntry{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the remittance retry cron query.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'tax_remittances')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_tax_remittances_pending_retry') THEN
		    CREATE INDEX idx_tax_remittances_pending_retry
		        ON tax_remittances (next_retry_at)
		        WHERE status = 'pending';
		  END IF;
		END $$`,
		// Ledger reads are always per-account in creation order.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'ledger_entries')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ledger_entries_account_created') THEN
		    CREATE INDEX idx_ledger_entries_account_created
		        ON ledger_entries (trust_account_id, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
