package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementRecord is a persisted settlement projection for one trust account.
// Every calculation appends a new record with the next Version; the latest
// version is "the settlement" for reporting and tax application. Records are
// never edited, so a settlement statement can always be reproduced as it was
// presented.
type SettlementRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TrustAccountID uuid.UUID `gorm:"type:uuid;not null;index:idx_settlements_account_version,unique,composite:account_version"`
	Version        int       `gorm:"not null;index:idx_settlements_account_version,unique,composite:account_version"`

	SalePrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GrossProceeds   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Commission      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VATOnCommission decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CGT             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// VATOnSale is zero unless the sale itself was VATable.
	VATOnSale decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NetPayout decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// CGTManual marks that the CGT figure was a caller override, not the
	// computed salePrice × rate.
	CGTManual bool `gorm:"not null;default:false"`
	// Locked mirrors the account lock: once the account closes, the numbers
	// of the final settlement are frozen with it.
	Locked    bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}
