package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OpenTrustAccountRequest is what the sale-payment processor sends when a
// buyer's first payment lands. Buyer/seller may be system users (IDs) or
// free-text names for parties not yet registered; the name wins for display
// either way.
type OpenTrustAccountRequest struct {
	PropertyID     string          `json:"property_id"     validate:"required,uuid"`
	BuyerID        *string         `json:"buyer_id"        validate:"omitempty,uuid"`
	SellerID       *string         `json:"seller_id"       validate:"omitempty,uuid"`
	BuyerName      string          `json:"buyer_name"      validate:"required,min=2"`
	SellerName     string          `json:"seller_name"     validate:"required,min=2"`
	SellerEmail    *string         `json:"seller_email"    validate:"omitempty,email"`
	OpeningPayment decimal.Decimal `json:"opening_payment" validate:"required,gt=0"`
	Reference      *string         `json:"reference"`
}

type CalculateSettlementRequest struct {
	SalePrice           decimal.Decimal  `json:"sale_price"             validate:"required,gt=0"`
	CommissionAmount    *decimal.Decimal `json:"commission_amount"      validate:"omitempty,min=0"`
	ApplyVATOnSale      bool             `json:"apply_vat_on_sale"`
	CGTRate             *decimal.Decimal `json:"cgt_rate"               validate:"omitempty,min=0"`
	CGTAmount           *decimal.Decimal `json:"cgt_amount"             validate:"omitempty,min=0"`
	VATSaleRate         *decimal.Decimal `json:"vat_sale_rate"          validate:"omitempty,min=0"`
	VATOnCommissionRate *decimal.Decimal `json:"vat_on_commission_rate" validate:"omitempty,min=0"`
}

type ApplyTaxDeductionsRequest struct {
	ZIMRAPaymentReference *string `json:"zimra_payment_reference"`
}

type DepositRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Reference *string         `json:"reference"`
}

type TransferToSellerRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Reference *string         `json:"reference"`
}

// AdjustmentRequest posts a correcting entry. Exactly one of debit/credit
// must be positive — the ledger never edits existing entries. Type defaults
// to ADJUSTMENT; the billing flow sets COMMISSION_DEDUCTION when it disburses
// the agency commission out of trust.
type AdjustmentRequest struct {
	Type      string          `json:"type"   validate:"omitempty,oneof=ADJUSTMENT COMMISSION_DEDUCTION"`
	Debit     decimal.Decimal `json:"debit"  validate:"min=0"`
	Credit    decimal.Decimal `json:"credit" validate:"min=0"`
	Reference *string         `json:"reference"`
}

type CloseTrustAccountRequest struct {
	LockReason *string `json:"lock_reason" validate:"omitempty,min=3"`
}

type WorkflowTransitionRequest struct {
	ToState string `json:"to_state" validate:"required,oneof=OPEN SETTLED CLOSED"`
}

// TrustAccountFilter narrows the account list endpoint.
type TrustAccountFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TrustAccountResponse struct {
	ID                string           `json:"id"`
	PropertyID        string           `json:"property_id"`
	PropertyName      string           `json:"property_name"`
	BuyerID           *string          `json:"buyer_id,omitempty"`
	SellerID          *string          `json:"seller_id,omitempty"`
	BuyerName         string           `json:"buyer_name"`
	SellerName        string           `json:"seller_name"`
	SellerEmail       *string          `json:"seller_email,omitempty"`
	OpeningBalance    decimal.Decimal  `json:"opening_balance"`
	RunningBalance    decimal.Decimal  `json:"running_balance"`
	ClosingBalance    *decimal.Decimal `json:"closing_balance,omitempty"`
	Status            string           `json:"status"`
	WorkflowState     string           `json:"workflow_state"`
	Locked            bool             `json:"locked"`
	LockReason        *string          `json:"lock_reason,omitempty"`
	TaxAppliedVersion *int             `json:"tax_applied_version,omitempty"`
	CreatedAt         string           `json:"created_at"`
}

type TrustAccountListResponse struct {
	Data  []TrustAccountResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

type LedgerEntryResponse struct {
	ID             string          `json:"id"`
	TrustAccountID string          `json:"trust_account_id"`
	Type           string          `json:"type"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	Reference      *string         `json:"reference,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type LedgerPageResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type DeductionResponse struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type SettlementResponse struct {
	TrustAccountID string              `json:"trust_account_id"`
	Version        int                 `json:"version"`
	SalePrice      decimal.Decimal     `json:"sale_price"`
	GrossProceeds  decimal.Decimal     `json:"gross_proceeds"`
	Deductions     []DeductionResponse `json:"deductions"`
	NetPayout      decimal.Decimal     `json:"net_payout"`
	CGTManual      bool                `json:"cgt_manual"`
	Locked         bool                `json:"locked"`
	CreatedAt      string              `json:"created_at"`
}

type TaxSummaryResponse struct {
	CGT              decimal.Decimal `json:"cgt"`
	VAT              decimal.Decimal `json:"vat"`
	VATOnCommission  decimal.Decimal `json:"vat_on_commission"`
	Total            decimal.Decimal `json:"total"`
	PaidToZIMRACount int             `json:"paid_to_zimra_count"`
}

type AuditLogEntryResponse struct {
	ID             string `json:"id"`
	TrustAccountID string `json:"trust_account_id"`
	EntityType     string `json:"entity_type"`
	EntityID       string `json:"entity_id"`
	Action         string `json:"action"`
	Actor          string `json:"actor"`
	CreatedAt      string `json:"created_at"`
}

// TrustAccountFullResponse assembles everything a report page needs in one
// consistent read: account, ledger, tax summary, audit trail and the latest
// settlement.
type TrustAccountFullResponse struct {
	Account    TrustAccountResponse    `json:"account"`
	Ledger     []LedgerEntryResponse   `json:"ledger"`
	TaxSummary TaxSummaryResponse      `json:"tax_summary"`
	AuditLogs  []AuditLogEntryResponse `json:"audit_logs"`
	Settlement *SettlementResponse     `json:"settlement,omitempty"`
}
