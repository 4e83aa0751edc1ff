package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proptrust/internal/dto"
	"proptrust/internal/model"
	"proptrust/internal/repository"
	"proptrust/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// appendRetries bounds the automatic retry on a lost optimistic-concurrency
// race before ErrConcurrencyConflict reaches the caller.
const appendRetries = 3

const timeLayout = "2006-01-02T15:04:05Z"

type TrustService interface {
	OpenAccount(ctx context.Context, actor string, req dto.OpenTrustAccountRequest) (*dto.TrustAccountResponse, error)
	List(ctx context.Context, filter dto.TrustAccountFilter) (*dto.TrustAccountListResponse, error)
	GetByProperty(ctx context.Context, propertyID uuid.UUID) (*dto.TrustAccountResponse, error)
	FullByProperty(ctx context.Context, propertyID uuid.UUID) (*dto.TrustAccountFullResponse, error)
	// Full assembles the consistent snapshot report generation reads.
	Full(ctx context.Context, id uuid.UUID) (*dto.TrustAccountFullResponse, error)
	Ledger(ctx context.Context, id uuid.UUID, page, limit int) (*dto.LedgerPageResponse, error)

	CalculateSettlement(ctx context.Context, actor string, id uuid.UUID, req dto.CalculateSettlementRequest) (*dto.SettlementResponse, error)
	ApplyTaxDeductions(ctx context.Context, actor string, id uuid.UUID, req dto.ApplyTaxDeductionsRequest) (*dto.TaxSummaryResponse, error)
	Deposit(ctx context.Context, actor string, id uuid.UUID, req dto.DepositRequest) (*dto.LedgerEntryResponse, error)
	TransferToSeller(ctx context.Context, actor string, id uuid.UUID, req dto.TransferToSellerRequest) (*dto.LedgerEntryResponse, error)
	Adjust(ctx context.Context, actor string, id uuid.UUID, req dto.AdjustmentRequest) (*dto.LedgerEntryResponse, error)
	Close(ctx context.Context, actor string, id uuid.UUID, req dto.CloseTrustAccountRequest) (*dto.TrustAccountResponse, error)
	Transition(ctx context.Context, actor string, id uuid.UUID, toState string) (*dto.TrustAccountResponse, error)
}

type trustService struct {
	repo       repository.TrustAccountRepository
	auditRepo  repository.AuditLogRepository
	properties repository.PropertyRepository
	rates      SettlementRates
	dispatcher *worker.Dispatcher
}

func NewTrustService(
	repo repository.TrustAccountRepository,
	auditRepo repository.AuditLogRepository,
	properties repository.PropertyRepository,
	rates SettlementRates,
	dispatcher *worker.Dispatcher,
) TrustService {
	return &trustService{
		repo:       repo,
		auditRepo:  auditRepo,
		properties: properties,
		rates:      rates,
		dispatcher: dispatcher,
	}
}

// ── OpenAccount ───────────────────────────────────────────────────────────────
// Called by the sale-payment processor when a buyer's first payment lands.
// Opens the account and posts the opening BUYER_PAYMENT credit atomically.

func (s *trustService) OpenAccount(ctx context.Context, actor string, req dto.OpenTrustAccountRequest) (*dto.TrustAccountResponse, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("property_id: %w", ErrNotFound)
	}
	prop, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if existing, err := s.repo.FindByPropertyID(ctx, propertyID); err == nil && existing != nil && existing.ID != uuid.Nil {
		return nil, errors.New("a trust account already exists for this property")
	}

	payment := req.OpeningPayment.Round(2)
	acc := &model.TrustAccount{
		ID:             uuid.New(),
		PropertyID:     propertyID,
		BuyerID:        parseOptionalID(req.BuyerID),
		SellerID:       parseOptionalID(req.SellerID),
		BuyerName:      req.BuyerName,
		SellerName:     req.SellerName,
		SellerEmail:    req.SellerEmail,
		PropertyName:   prop.DisplayName(),
		OpeningBalance: decimal.Zero,
		RunningBalance: payment,
		Status:         model.StatusOpen,
		WorkflowState:  model.StatusOpen,
	}
	opening := &model.LedgerEntry{
		ID:             uuid.New(),
		TrustAccountID: acc.ID,
		Type:           model.EntryBuyerPayment,
		Debit:          decimal.Zero,
		Credit:         payment,
		RunningBalance: payment,
		Reference:      req.Reference,
	}
	audit := s.newAudit(acc.ID, "ledger_entry", opening.ID, actor,
		fmt.Sprintf("trust account opened with buyer payment of %s", payment.StringFixed(2)))

	if err := s.repo.Create(ctx, acc, opening, audit); err != nil {
		return nil, err
	}
	return toAccountResponse(acc), nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *trustService) List(ctx context.Context, filter dto.TrustAccountFilter) (*dto.TrustAccountListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TrustAccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, *toAccountResponse(&accounts[i]))
	}
	return &dto.TrustAccountListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *trustService) GetByProperty(ctx context.Context, propertyID uuid.UUID) (*dto.TrustAccountResponse, error) {
	acc, err := s.repo.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toAccountResponse(acc), nil
}

func (s *trustService) FullByProperty(ctx context.Context, propertyID uuid.UUID) (*dto.TrustAccountFullResponse, error) {
	acc, err := s.repo.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return s.assembleFull(ctx, acc)
}

func (s *trustService) Full(ctx context.Context, id uuid.UUID) (*dto.TrustAccountFullResponse, error) {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return s.assembleFull(ctx, acc)
}

func (s *trustService) assembleFull(ctx context.Context, acc *model.TrustAccount) (*dto.TrustAccountFullResponse, error) {
	entries, err := s.repo.ListEntriesAsc(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	remits, err := s.repo.ListRemittances(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	logs, err := s.auditRepo.ListByAccount(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	// Display order is newest first; balance math always uses creation order.
	ledger := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		ledger = append(ledger, *toEntryResponse(&entries[i]))
	}
	auditLogs := make([]dto.AuditLogEntryResponse, 0, len(logs))
	for i := range logs {
		auditLogs = append(auditLogs, *toAuditResponse(&logs[i]))
	}

	full := &dto.TrustAccountFullResponse{
		Account:    *toAccountResponse(acc),
		Ledger:     ledger,
		TaxSummary: summarizeTaxes(entries, remits),
		AuditLogs:  auditLogs,
	}
	if rec, err := s.repo.LatestSettlement(ctx, acc.ID); err == nil {
		full.Settlement = toSettlementResponse(rec, acc.Locked)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return full, nil
}

func (s *trustService) Ledger(ctx context.Context, id uuid.UUID, page, limit int) (*dto.LedgerPageResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapRepoErr(err)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	entries, total, err := s.repo.ListEntries(ctx, id, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, *toEntryResponse(&entries[i]))
	}
	return &dto.LedgerPageResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// ── CalculateSettlement ───────────────────────────────────────────────────────
// Persists a fresh, versioned projection on every call. The first calculation
// moves the account OPEN → SETTLED; none of this touches the ledger.

func (s *trustService) CalculateSettlement(ctx context.Context, actor string, id uuid.UUID, req dto.CalculateSettlementRequest) (*dto.SettlementResponse, error) {
	var out *dto.SettlementResponse
	err := s.withConflictRetry(func() error {
		acc, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}
		if acc.Locked {
			return ErrAccountLocked
		}

		settle := CalculateSettlement(req, s.rates)

		version := 1
		if prev, err := s.repo.LatestSettlement(ctx, id); err == nil {
			version = prev.Version + 1
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		rec := &model.SettlementRecord{
			ID:              uuid.New(),
			TrustAccountID:  acc.ID,
			Version:         version,
			SalePrice:       settle.SalePrice,
			GrossProceeds:   settle.GrossProceeds,
			Commission:      settle.DeductionAmount(DeductionCommission),
			VATOnCommission: settle.DeductionAmount(DeductionVATOnCommission),
			CGT:             settle.DeductionAmount(DeductionCGT),
			VATOnSale:       settle.DeductionAmount(DeductionVATOnSale),
			NetPayout:       settle.NetPayout,
			CGTManual:       settle.CGTManual,
		}

		if acc.Status == model.StatusOpen {
			if err := ValidateTransition(acc.Status, model.StatusSettled); err != nil {
				return err
			}
			acc.Status = model.StatusSettled
			acc.WorkflowState = model.StatusSettled
		}

		audit := s.newAudit(acc.ID, "settlement", rec.ID, actor,
			fmt.Sprintf("settlement v%d calculated, net payout %s", version, settle.NetPayout.StringFixed(2)))
		if err := s.repo.SaveSettlement(ctx, rec, acc, audit); err != nil {
			return mapRepoErr(err)
		}
		out = toSettlementResponse(rec, acc.Locked)
		return nil
	})
	return out, err
}

// ── ApplyTaxDeductions ────────────────────────────────────────────────────────
// Posts one debit per tax line of the latest settlement. Application is bound
// to the settlement version: re-applying the same version returns the current
// summary without posting, recalculating first produces a new version that may
// legitimately be applied again.

func (s *trustService) ApplyTaxDeductions(ctx context.Context, actor string, id uuid.UUID, req dto.ApplyTaxDeductionsRequest) (*dto.TaxSummaryResponse, error) {
	var out *dto.TaxSummaryResponse
	err := s.withConflictRetry(func() error {
		acc, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}
		if acc.Locked {
			return ErrAccountLocked
		}

		rec, err := s.repo.LatestSettlement(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSettlement
		}
		if err != nil {
			return err
		}

		if acc.TaxAppliedVersion != nil && *acc.TaxAppliedVersion == rec.Version {
			summary, err := s.taxSummary(ctx, id)
			if err != nil {
				return err
			}
			out = summary
			return nil
		}

		type taxLine struct {
			entryType string
			amount    decimal.Decimal
		}
		lines := []taxLine{
			{model.EntryCGT, rec.CGT},
			{model.EntryVATOnCommission, rec.VATOnCommission},
			{model.EntryVAT, rec.VATOnSale},
		}

		now := time.Now().UTC()
		balance := acc.RunningBalance
		var entries []*model.LedgerEntry
		var remits []*model.TaxRemittance
		for i, line := range lines {
			if !line.amount.IsPositive() {
				continue
			}
			balance = balance.Sub(line.amount)
			entry := &model.LedgerEntry{
				ID:             uuid.New(),
				TrustAccountID: acc.ID,
				Type:           line.entryType,
				Debit:          line.amount,
				Credit:         decimal.Zero,
				RunningBalance: balance,
				Reference:      req.ZIMRAPaymentReference,
				// sequential stamps keep creation order stable within the batch
				CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			}
			entries = append(entries, entry)

			rem := &model.TaxRemittance{
				ID:             uuid.New(),
				TrustAccountID: acc.ID,
				LedgerEntryID:  entry.ID,
				TaxType:        line.entryType,
				Amount:         line.amount,
				Status:         model.RemittancePending,
			}
			if req.ZIMRAPaymentReference != nil && *req.ZIMRAPaymentReference != "" {
				rem.Status = model.RemittanceSubmitted
				rem.Reference = req.ZIMRAPaymentReference
				submitted := now
				rem.SubmittedAt = &submitted
			}
			remits = append(remits, rem)
		}

		acc.RunningBalance = balance
		version := rec.Version
		acc.TaxAppliedVersion = &version
		acc.WorkflowState = "TAXES_APPLIED"

		audit := s.newAudit(acc.ID, "tax_remittance", rec.ID, actor,
			fmt.Sprintf("tax deductions applied for settlement v%d", version))
		if err := s.repo.AppendEntries(ctx, acc, entries, remits, audit); err != nil {
			return mapRepoErr(err)
		}

		summary, err := s.taxSummary(ctx, id)
		if err != nil {
			return err
		}
		out = summary
		return nil
	})
	return out, err
}

func (s *trustService) taxSummary(ctx context.Context, id uuid.UUID) (*dto.TaxSummaryResponse, error) {
	entries, err := s.repo.ListEntriesAsc(ctx, id)
	if err != nil {
		return nil, err
	}
	remits, err := s.repo.ListRemittances(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := summarizeTaxes(entries, remits)
	return &summary, nil
}

func summarizeTaxes(entries []model.LedgerEntry, remits []model.TaxRemittance) dto.TaxSummaryResponse {
	summary := dto.TaxSummaryResponse{
		CGT:             decimal.Zero,
		VAT:             decimal.Zero,
		VATOnCommission: decimal.Zero,
		Total:           decimal.Zero,
	}
	for _, e := range entries {
		switch e.Type {
		case model.EntryCGT:
			summary.CGT = summary.CGT.Add(e.Debit)
		case model.EntryVAT:
			summary.VAT = summary.VAT.Add(e.Debit)
		case model.EntryVATOnCommission:
			summary.VATOnCommission = summary.VATOnCommission.Add(e.Debit)
		}
	}
	summary.Total = summary.CGT.Add(summary.VAT).Add(summary.VATOnCommission)
	for _, r := range remits {
		if r.Status == model.RemittanceSubmitted {
			summary.PaidToZIMRACount++
		}
	}
	return summary
}

// ── Ledger appends ────────────────────────────────────────────────────────────

func (s *trustService) Deposit(ctx context.Context, actor string, id uuid.UUID, req dto.DepositRequest) (*dto.LedgerEntryResponse, error) {
	return s.appendSingle(ctx, actor, id, model.EntryBuyerPayment, decimal.Zero, req.Amount, req.Reference,
		fmt.Sprintf("buyer payment of %s received", req.Amount.Round(2).StringFixed(2)))
}

func (s *trustService) TransferToSeller(ctx context.Context, actor string, id uuid.UUID, req dto.TransferToSellerRequest) (*dto.LedgerEntryResponse, error) {
	return s.appendSingle(ctx, actor, id, model.EntrySellerPayout, req.Amount, decimal.Zero, req.Reference,
		fmt.Sprintf("payout of %s transferred to seller", req.Amount.Round(2).StringFixed(2)))
}

func (s *trustService) Adjust(ctx context.Context, actor string, id uuid.UUID, req dto.AdjustmentRequest) (*dto.LedgerEntryResponse, error) {
	entryType := model.EntryAdjustment
	action := "manual adjustment posted"
	if req.Type == model.EntryCommission {
		entryType = model.EntryCommission
		action = fmt.Sprintf("commission of %s disbursed from trust", req.Debit.Round(2).StringFixed(2))
	}
	return s.appendSingle(ctx, actor, id, entryType, req.Debit, req.Credit, req.Reference, action)
}

func (s *trustService) appendSingle(ctx context.Context, actor string, id uuid.UUID, entryType string, debit, credit decimal.Decimal, reference *string, action string) (*dto.LedgerEntryResponse, error) {
	debit = debit.Round(2)
	credit = credit.Round(2)
	if err := validateEntryAmounts(debit, credit); err != nil {
		return nil, err
	}

	var out *dto.LedgerEntryResponse
	err := s.withConflictRetry(func() error {
		acc, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}
		if acc.Locked {
			return ErrAccountLocked
		}

		entry := &model.LedgerEntry{
			ID:             uuid.New(),
			TrustAccountID: acc.ID,
			Type:           entryType,
			Debit:          debit,
			Credit:         credit,
			RunningBalance: acc.RunningBalance.Add(credit).Sub(debit),
			Reference:      reference,
		}
		acc.RunningBalance = entry.RunningBalance

		audit := s.newAudit(acc.ID, "ledger_entry", entry.ID, actor, action)
		if err := s.repo.AppendEntries(ctx, acc, []*model.LedgerEntry{entry}, nil, audit); err != nil {
			return mapRepoErr(err)
		}
		out = toEntryResponse(entry)
		return nil
	})
	return out, err
}

// validateEntryAmounts enforces the entry shape: exactly one side positive,
// neither side negative.
func validateEntryAmounts(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return ErrInvalidEntry
	}
	if debit.IsZero() == credit.IsZero() {
		return ErrInvalidEntry
	}
	return nil
}

// ── Close & workflow ──────────────────────────────────────────────────────────

func (s *trustService) Close(ctx context.Context, actor string, id uuid.UUID, req dto.CloseTrustAccountRequest) (*dto.TrustAccountResponse, error) {
	reason := "trust account closed after settlement"
	if req.LockReason != nil && *req.LockReason != "" {
		reason = *req.LockReason
	}

	var out *dto.TrustAccountResponse
	err := s.withConflictRetry(func() error {
		acc, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}
		if err := ValidateTransition(acc.Status, model.StatusClosed); err != nil {
			return err
		}

		closing := acc.RunningBalance
		acc.Status = model.StatusClosed
		acc.WorkflowState = model.StatusClosed
		acc.Locked = true
		acc.LockReason = &reason
		acc.ClosingBalance = &closing

		audit := s.newAudit(acc.ID, "trust_account", acc.ID, actor, "trust account closed: "+reason)
		if err := s.repo.CloseAccount(ctx, acc, audit); err != nil {
			return mapRepoErr(err)
		}
		out = toAccountResponse(acc)

		// Best-effort closing pack: seller settlement statement by email.
		if s.dispatcher != nil {
			_ = s.dispatcher.EnqueueClosingPack(ctx, worker.ClosingPackPayload{
				TrustAccountID: acc.ID.String(),
			})
		}
		return nil
	})
	return out, err
}

func (s *trustService) Transition(ctx context.Context, actor string, id uuid.UUID, toState string) (*dto.TrustAccountResponse, error) {
	if toState == model.StatusClosed {
		return s.Close(ctx, actor, id, dto.CloseTrustAccountRequest{})
	}

	var out *dto.TrustAccountResponse
	err := s.withConflictRetry(func() error {
		acc, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}
		if err := ValidateTransition(acc.Status, toState); err != nil {
			return err
		}
		if toState == model.StatusSettled {
			if _, err := s.repo.LatestSettlement(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoSettlement
			} else if err != nil {
				return err
			}
		}

		acc.Status = toState
		acc.WorkflowState = toState
		audit := s.newAudit(acc.ID, "trust_account", acc.ID, actor, "workflow transition to "+toState)
		if err := s.repo.UpdateAccount(ctx, acc, audit); err != nil {
			return mapRepoErr(err)
		}
		out = toAccountResponse(acc)
		return nil
	})
	return out, err
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// withConflictRetry re-runs fn while it loses the per-account version race,
// up to appendRetries attempts. Every attempt re-reads the aggregate, so a
// retry never reuses stale balances.
func (s *trustService) withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		err = fn()
		if !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

func (s *trustService) newAudit(accountID uuid.UUID, entityType string, entityID uuid.UUID, actor, action string) *model.AuditLogEntry {
	if actor == "" {
		actor = "system"
	}
	return &model.AuditLogEntry{
		ID:             uuid.New(),
		TrustAccountID: accountID,
		EntityType:     entityType,
		EntityID:       entityID,
		Actor:          actor,
		Action:         action,
	}
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrConcurrencyConflict
	}
	return err
}

func parseOptionalID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func toAccountResponse(acc *model.TrustAccount) *dto.TrustAccountResponse {
	resp := &dto.TrustAccountResponse{
		ID:                acc.ID.String(),
		PropertyID:        acc.PropertyID.String(),
		PropertyName:      acc.PropertyName,
		BuyerName:         acc.BuyerName,
		SellerName:        acc.SellerName,
		SellerEmail:       acc.SellerEmail,
		OpeningBalance:    acc.OpeningBalance,
		RunningBalance:    acc.RunningBalance,
		ClosingBalance:    acc.ClosingBalance,
		Status:            acc.Status,
		WorkflowState:     acc.WorkflowState,
		Locked:            acc.Locked,
		LockReason:        acc.LockReason,
		TaxAppliedVersion: acc.TaxAppliedVersion,
		CreatedAt:         acc.CreatedAt.Format(timeLayout),
	}
	if acc.BuyerID != nil {
		id := acc.BuyerID.String()
		resp.BuyerID = &id
	}
	if acc.SellerID != nil {
		id := acc.SellerID.String()
		resp.SellerID = &id
	}
	return resp
}

func toEntryResponse(e *model.LedgerEntry) *dto.LedgerEntryResponse {
	return &dto.LedgerEntryResponse{
		ID:             e.ID.String(),
		TrustAccountID: e.TrustAccountID.String(),
		Type:           e.Type,
		Debit:          e.Debit,
		Credit:         e.Credit,
		RunningBalance: e.RunningBalance,
		Reference:      e.Reference,
		CreatedAt:      e.CreatedAt.Format(timeLayout),
	}
}

func toSettlementResponse(rec *model.SettlementRecord, accountLocked bool) *dto.SettlementResponse {
	deductions := []dto.DeductionResponse{
		{Type: DeductionCommission, Amount: rec.Commission},
		{Type: DeductionVATOnCommission, Amount: rec.VATOnCommission},
		{Type: DeductionCGT, Amount: rec.CGT},
	}
	if rec.VATOnSale.IsPositive() {
		deductions = append(deductions, dto.DeductionResponse{Type: DeductionVATOnSale, Amount: rec.VATOnSale})
	}
	return &dto.SettlementResponse{
		TrustAccountID: rec.TrustAccountID.String(),
		Version:        rec.Version,
		SalePrice:      rec.SalePrice,
		GrossProceeds:  rec.GrossProceeds,
		Deductions:     deductions,
		NetPayout:      rec.NetPayout,
		CGTManual:      rec.CGTManual,
		Locked:         rec.Locked || accountLocked,
		CreatedAt:      rec.CreatedAt.Format(timeLayout),
	}
}

func toAuditResponse(e *model.AuditLogEntry) *dto.AuditLogEntryResponse {
	return &dto.AuditLogEntryResponse{
		ID:             e.ID.String(),
		TrustAccountID: e.TrustAccountID.String(),
		EntityType:     e.EntityType,
		EntityID:       e.EntityID.String(),
		Action:         e.Action,
		Actor:          e.Actor,
		CreatedAt:      e.CreatedAt.Format(timeLayout),
	}
}
