package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry records one mutating action against a trust account.
// Rows are append-only and written in the same transaction as the mutation
// they describe: if the audit write fails, the mutation rolls back with it.
type AuditLogEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TrustAccountID uuid.UUID `gorm:"type:uuid;index;not null"`
	// EntityType/EntityID point at the record the action touched
	// (trust_account, ledger_entry, settlement, tax_remittance).
	EntityType string    `gorm:"type:varchar(40);not null"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null"`
	Action     string    `gorm:"not null"`
	// Actor is the username from the JWT, or "system" for worker actions.
	Actor     string `gorm:"not null;default:'system'"`
	CreatedAt time.Time
}
