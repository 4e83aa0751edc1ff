package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tax remittance states.
// pending: deduction posted to the ledger, not yet confirmed with ZIMRA.
// submitted: accepted by the gateway, or applied with a caller-supplied
// payment reference.
// error: max retries exceeded; parked in the DLQ for manual handling.
const (
	RemittancePending   = "pending"
	RemittanceSubmitted = "submitted"
	RemittanceError     = "error"
)

// TaxRemittance tracks the external remittance of one tax ledger entry.
// Ledger entries are immutable, so remittance state lives here, one row per
// tax entry, updated by the remittance cron as the gateway responds.
type TaxRemittance struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TrustAccountID uuid.UUID       `gorm:"type:uuid;index;not null"`
	LedgerEntryID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	TaxType        string          `gorm:"type:varchar(40);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Reference is the ZIMRA payment reference, from the caller or the gateway.
	Reference *string
	Status    string `gorm:"type:varchar(20);not null;default:'pending'"`

	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	SubmittedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
