package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trust account lifecycle states. Transitions only move forward:
// OPEN → SETTLED → CLOSED.
const (
	StatusOpen    = "OPEN"
	StatusSettled = "SETTLED"
	StatusClosed  = "CLOSED"
)

// Ledger entry types. The tax types are posted by the tax deduction applier;
// COMMISSION_DEDUCTION is posted by the agency's billing flow through the
// adjustment operation when it disburses its commission out of trust — the
// ledger core never initiates it.
const (
	EntryBuyerPayment    = "BUYER_PAYMENT"
	EntryCommission      = "COMMISSION_DEDUCTION"
	EntryCGT             = "CGT_DEDUCTION"
	EntryVAT             = "VAT_DEDUCTION"
	EntryVATOnCommission = "VAT_ON_COMMISSION_DEDUCTION"
	EntrySellerPayout    = "SELLER_PAYOUT"
	EntryAdjustment      = "ADJUSTMENT"
)

// TrustAccount escrows buyer funds for one property sale.
// RunningBalance is denormalized for fast reads; it must always equal
// OpeningBalance + Σ(credits) − Σ(debits) over the account's entries in
// creation order. Version is an optimistic-concurrency counter: every append
// bumps it, and a lost race surfaces as a concurrency conflict rather than a
// silently corrupted balance.
type TrustAccount struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	// Parties may be system users (ID set) or free-text names captured before
	// the party exists as a user. The name is always denormalized here so list
	// and report reads never join.
	BuyerID      *uuid.UUID `gorm:"type:uuid"`
	SellerID     *uuid.UUID `gorm:"type:uuid"`
	BuyerName    string     `gorm:"not null"`
	SellerName   string     `gorm:"not null"`
	SellerEmail  *string
	PropertyName string `gorm:"not null"`

	OpeningBalance decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	RunningBalance decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ClosingBalance *decimal.Decimal `gorm:"type:decimal(12,2)"`

	Status string `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	// WorkflowState tracks finer-grained UI stages alongside Status
	// (e.g. TAXES_APPLIED between SETTLED and CLOSED).
	WorkflowState string `gorm:"type:varchar(40);not null;default:'OPEN'"`

	// Locked is set at close time; the ledger rejects all further appends.
	Locked     bool `gorm:"not null;default:false"`
	LockReason *string

	// TaxAppliedVersion is the settlement version whose tax deductions were
	// last posted. Re-applying the same version is a no-op; recalculating the
	// settlement bumps the version and allows a fresh application.
	TaxAppliedVersion *int

	Version   int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Entries []LedgerEntry `gorm:"foreignKey:TrustAccountID"`
}

// LedgerEntry is one immutable debit or credit against a trust account.
// Entries are NEVER updated or deleted — corrections are new ADJUSTMENT
// entries. Exactly one of Debit/Credit is non-zero; both are non-negative.
// RunningBalance snapshots the account balance immediately after this entry.
type LedgerEntry struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TrustAccountID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type           string          `gorm:"type:varchar(40);not null"`
	Debit          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Credit         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RunningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Reference holds an external payment reference (bank ref, ZIMRA ref).
	Reference *string
	CreatedAt time.Time
}

// IsTax reports whether an entry type is a tax deduction remitted to ZIMRA.
func IsTax(entryType string) bool {
	switch entryType {
	case EntryCGT, EntryVAT, EntryVATOnCommission:
		return true
	}
	return false
}
