package tests

import (
	"context"
	"sync"
	"testing"

	"proptrust/internal/dto"
	"proptrust/internal/model"
	"proptrust/internal/repository"
	"proptrust/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ─── In-memory fakes ─────────────────────────────────────────────────────────
// The fakes mirror the postgres repositories' contract, including the
// optimistic version guard: a stale aggregate write returns
// repository.ErrVersionConflict and persists nothing.

type fakeTrustRepo struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]*model.TrustAccount
	entries     map[uuid.UUID][]model.LedgerEntry
	settlements map[uuid.UUID][]model.SettlementRecord
	remits      map[uuid.UUID][]model.TaxRemittance
	audits      *fakeAuditRepo
}

var _ repository.TrustAccountRepository = (*fakeTrustRepo)(nil)

func newFakeTrustRepo(audits *fakeAuditRepo) *fakeTrustRepo {
	return &fakeTrustRepo{
		accounts:    make(map[uuid.UUID]*model.TrustAccount),
		entries:     make(map[uuid.UUID][]model.LedgerEntry),
		settlements: make(map[uuid.UUID][]model.SettlementRecord),
		remits:      make(map[uuid.UUID][]model.TaxRemittance),
		audits:      audits,
	}
}

func copyAccount(a *model.TrustAccount) *model.TrustAccount {
	cp := *a
	return &cp
}

// advance is the fake's version of the guarded aggregate write.
func (f *fakeTrustRepo) advance(acc *model.TrustAccount) error {
	stored, ok := f.accounts[acc.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != acc.Version {
		return repository.ErrVersionConflict
	}
	acc.Version++
	f.accounts[acc.ID] = copyAccount(acc)
	return nil
}

func (f *fakeTrustRepo) Create(_ context.Context, acc *model.TrustAccount, opening *model.LedgerEntry, audit *model.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[acc.ID] = copyAccount(acc)
	f.entries[acc.ID] = append(f.entries[acc.ID], *opening)
	audit.TrustAccountID = acc.ID
	audit.EntityID = opening.ID
	f.audits.add(*audit)
	return nil
}

func (f *fakeTrustRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TrustAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyAccount(acc), nil
}

func (f *fakeTrustRepo) FindByPropertyID(_ context.Context, propertyID uuid.UUID) (*model.TrustAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.PropertyID == propertyID {
			return copyAccount(acc), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTrustRepo) List(_ context.Context, filter dto.TrustAccountFilter) ([]model.TrustAccount, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TrustAccount
	for _, acc := range f.accounts {
		if filter.Status != "" && acc.Status != filter.Status {
			continue
		}
		out = append(out, *acc)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTrustRepo) ListEntries(_ context.Context, accountID uuid.UUID, page, limit int) ([]model.LedgerEntry, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.entries[accountID]
	// newest first, like the postgres repo
	desc := make([]model.LedgerEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		desc = append(desc, all[i])
	}
	start := (page - 1) * limit
	if start > len(desc) {
		start = len(desc)
	}
	end := start + limit
	if end > len(desc) {
		end = len(desc)
	}
	return desc[start:end], int64(len(all)), nil
}

func (f *fakeTrustRepo) ListEntriesAsc(_ context.Context, accountID uuid.UUID) ([]model.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.LedgerEntry(nil), f.entries[accountID]...), nil
}

func (f *fakeTrustRepo) AppendEntries(_ context.Context, acc *model.TrustAccount, entries []*model.LedgerEntry, remits []*model.TaxRemittance, audit *model.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.advance(acc); err != nil {
		return err
	}
	for _, e := range entries {
		f.entries[acc.ID] = append(f.entries[acc.ID], *e)
	}
	for _, rem := range remits {
		f.remits[acc.ID] = append(f.remits[acc.ID], *rem)
	}
	if audit.EntityID == uuid.Nil && len(entries) > 0 {
		audit.EntityID = entries[0].ID
	}
	f.audits.add(*audit)
	return nil
}

func (f *fakeTrustRepo) UpdateAccount(_ context.Context, acc *model.TrustAccount, audit *model.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.advance(acc); err != nil {
		return err
	}
	f.audits.add(*audit)
	return nil
}

func (f *fakeTrustRepo) CloseAccount(_ context.Context, acc *model.TrustAccount, audit *model.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.advance(acc); err != nil {
		return err
	}
	recs := f.settlements[acc.ID]
	for i := range recs {
		recs[i].Locked = true
	}
	f.audits.add(*audit)
	return nil
}

func (f *fakeTrustRepo) SaveSettlement(_ context.Context, rec *model.SettlementRecord, acc *model.TrustAccount, audit *model.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.advance(acc); err != nil {
		return err
	}
	f.settlements[acc.ID] = append(f.settlements[acc.ID], *rec)
	audit.EntityID = rec.ID
	f.audits.add(*audit)
	return nil
}

func (f *fakeTrustRepo) LatestSettlement(_ context.Context, accountID uuid.UUID) (*model.SettlementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.settlements[accountID]
	if len(recs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	latest := recs[0]
	for _, r := range recs[1:] {
		if r.Version > latest.Version {
			latest = r
		}
	}
	return &latest, nil
}

func (f *fakeTrustRepo) ListRemittances(_ context.Context, accountID uuid.UUID) ([]model.TaxRemittance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TaxRemittance(nil), f.remits[accountID]...), nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	rows []model.AuditLogEntry
}

var _ repository.AuditLogRepository = (*fakeAuditRepo)(nil)

func (f *fakeAuditRepo) add(e model.AuditLogEntry) {
	f.rows = append(f.rows, e)
}

func (f *fakeAuditRepo) Create(_ context.Context, e *model.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(*e)
	return nil
}

func (f *fakeAuditRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]model.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AuditLogEntry
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].TrustAccountID == accountID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeAuditRepo) countFor(accountID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.TrustAccountID == accountID {
			n++
		}
	}
	return n
}

type fakePropertyRepo struct {
	mu    sync.Mutex
	props map[uuid.UUID]model.Property
}

var _ repository.PropertyRepository = (*fakePropertyRepo)(nil)

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{props: make(map[uuid.UUID]model.Property)}
}

func (f *fakePropertyRepo) Create(_ context.Context, p *model.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[p.ID] = *p
	return nil
}

func (f *fakePropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakePropertyRepo) List(_ context.Context, _, _ int) ([]model.Property, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Property
	for _, p := range f.props {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

// ─── Test environment ────────────────────────────────────────────────────────

type trustEnv struct {
	svc      service.TrustService
	repo     *fakeTrustRepo
	audits   *fakeAuditRepo
	props    *fakePropertyRepo
	property model.Property
}

func newTrustEnv(t *testing.T) *trustEnv {
	t.Helper()
	audits := &fakeAuditRepo{}
	repo := newFakeTrustRepo(audits)
	props := newFakePropertyRepo()

	prop := model.Property{
		ID:          uuid.New(),
		StandNumber: "4512",
		Address:     "12 Josiah Tongogara Ave",
		Suburb:      "Avondale",
		City:        "Harare",
		Active:      true,
	}
	require.NoError(t, props.Create(context.Background(), &prop))

	svc := service.NewTrustService(repo, audits, props, defaultRates(), nil)
	return &trustEnv{svc: svc, repo: repo, audits: audits, props: props, property: prop}
}

func (env *trustEnv) openAccount(t *testing.T, opening string) uuid.UUID {
	t.Helper()
	resp, err := env.svc.OpenAccount(context.Background(), "conveyancer1", dto.OpenTrustAccountRequest{
		PropertyID:     env.property.ID.String(),
		BuyerName:      "Tendai Moyo",
		SellerName:     "Rudo Chikafu",
		OpeningPayment: dec(opening),
	})
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

// settle posts the standard settlement used across tests:
// sale 100 000, commission 5 000, CGT 5 000, VAT on commission 750.
func (env *trustEnv) settle(t *testing.T, id uuid.UUID) *dto.SettlementResponse {
	t.Helper()
	rec, err := env.svc.CalculateSettlement(context.Background(), "conveyancer1", id, dto.CalculateSettlementRequest{
		SalePrice: dec("100000"),
	})
	require.NoError(t, err)
	return rec
}

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestOpenAccountPostsOpeningCredit(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()

	resp, err := env.svc.OpenAccount(ctx, "conveyancer1", dto.OpenTrustAccountRequest{
		PropertyID:     env.property.ID.String(),
		BuyerName:      "Tendai Moyo",
		SellerName:     "Rudo Chikafu",
		OpeningPayment: dec("25000"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, resp.Status)
	assert.True(t, resp.RunningBalance.Equal(dec("25000")))
	assert.Equal(t, "Stand 4512, 12 Josiah Tongogara Ave, Avondale", resp.PropertyName)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	entries, err := env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryBuyerPayment, entries[0].Type)
	assert.True(t, entries[0].Credit.Equal(dec("25000")))
	assert.True(t, entries[0].Debit.IsZero())
	assert.True(t, entries[0].RunningBalance.Equal(dec("25000")))
	assert.Equal(t, 1, env.audits.countFor(id))

	// one account per property
	_, err = env.svc.OpenAccount(ctx, "conveyancer1", dto.OpenTrustAccountRequest{
		PropertyID:     env.property.ID.String(),
		BuyerName:      "Another Buyer",
		SellerName:     "Another Seller",
		OpeningPayment: dec("100"),
	})
	assert.Error(t, err)

	// unknown property
	_, err = env.svc.OpenAccount(ctx, "conveyancer1", dto.OpenTrustAccountRequest{
		PropertyID:     uuid.NewString(),
		BuyerName:      "Tendai Moyo",
		SellerName:     "Rudo Chikafu",
		OpeningPayment: dec("100"),
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestLedgerBalanceInvariant(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "40000")

	_, err := env.svc.Deposit(ctx, "conveyancer1", id, dto.DepositRequest{Amount: dec("60000")})
	require.NoError(t, err)
	_, err = env.svc.Adjust(ctx, "admin1", id, dto.AdjustmentRequest{Debit: dec("150"), Credit: decimal.Zero})
	require.NoError(t, err)
	payout, err := env.svc.TransferToSeller(ctx, "conveyancer1", id, dto.TransferToSellerRequest{Amount: dec("30000")})
	require.NoError(t, err)
	assert.True(t, payout.RunningBalance.Equal(dec("69850")))

	acc, err := env.repo.FindByID(ctx, id)
	require.NoError(t, err)
	entries, err := env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)

	// balance = opening + Σcredits − Σdebits, and every entry's snapshot
	// continues the chain of the one before it
	balance := acc.OpeningBalance
	for _, e := range entries {
		balance = balance.Add(e.Credit).Sub(e.Debit)
		assert.True(t, e.RunningBalance.Equal(balance),
			"entry %s snapshot %s, want %s", e.Type, e.RunningBalance, balance)
	}
	assert.True(t, acc.RunningBalance.Equal(balance))
	assert.True(t, acc.RunningBalance.Equal(dec("69850")))
}

func TestLedgerEntryValidation(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "1000")

	cases := []struct {
		name   string
		debit  string
		credit string
	}{
		{"both sides set", "100", "100"},
		{"neither side set", "0", "0"},
		{"negative debit", "-50", "0"},
		{"negative credit", "0", "-50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Adjust(ctx, "admin1", id, dto.AdjustmentRequest{
				Debit:  dec(tc.debit),
				Credit: dec(tc.credit),
			})
			assert.ErrorIs(t, err, service.ErrInvalidEntry)
		})
	}

	// nothing was persisted
	entries, err := env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	acc, err := env.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, acc.RunningBalance.Equal(dec("1000")))
}

func TestClosedAccountRejectsMutations(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "100000")
	env.settle(t, id)

	closed, err := env.svc.Close(ctx, "admin1", id, dto.CloseTrustAccountRequest{})
	require.NoError(t, err)
	assert.True(t, closed.Locked)
	require.NotNil(t, closed.ClosingBalance)
	assert.True(t, closed.ClosingBalance.Equal(dec("100000")))

	before, err := env.repo.FindByID(ctx, id)
	require.NoError(t, err)

	_, err = env.svc.Deposit(ctx, "conveyancer1", id, dto.DepositRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, service.ErrAccountLocked)
	_, err = env.svc.TransferToSeller(ctx, "conveyancer1", id, dto.TransferToSellerRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, service.ErrAccountLocked)
	_, err = env.svc.ApplyTaxDeductions(ctx, "conveyancer1", id, dto.ApplyTaxDeductionsRequest{})
	assert.ErrorIs(t, err, service.ErrAccountLocked)
	_, err = env.svc.CalculateSettlement(ctx, "conveyancer1", id, dto.CalculateSettlementRequest{SalePrice: dec("1")})
	assert.ErrorIs(t, err, service.ErrAccountLocked)

	after, err := env.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.True(t, before.RunningBalance.Equal(after.RunningBalance))
}

func TestAuditRowPerMutation(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()

	// five mutations: open, deposit, settle, apply taxes, close
	id := env.openAccount(t, "100000")
	_, err := env.svc.Deposit(ctx, "conveyancer1", id, dto.DepositRequest{Amount: dec("500")})
	require.NoError(t, err)
	env.settle(t, id)
	_, err = env.svc.ApplyTaxDeductions(ctx, "conveyancer1", id, dto.ApplyTaxDeductionsRequest{})
	require.NoError(t, err)
	_, err = env.svc.Close(ctx, "admin1", id, dto.CloseTrustAccountRequest{})
	require.NoError(t, err)

	// a failed mutation writes no audit row
	_, err = env.svc.Deposit(ctx, "conveyancer1", id, dto.DepositRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, service.ErrAccountLocked)

	assert.Equal(t, 5, env.audits.countFor(id))

	logs, err := env.audits.ListByAccount(ctx, id)
	require.NoError(t, err)
	require.Len(t, logs, 5)
	assert.Equal(t, "admin1", logs[0].Actor) // newest first: the close
	assert.Equal(t, "trust_account", logs[0].EntityType)
}

func TestConcurrentDepositsSerialize(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "1000")

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Deposit(ctx, "conveyancer1", id, dto.DepositRequest{Amount: dec("100")})
		}(i)
	}
	wg.Wait()

	// a deposit either lands or reports the lost race — never a silent drop
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, service.ErrConcurrencyConflict)
		}
	}
	require.Greater(t, succeeded, 0)

	acc, err := env.repo.FindByID(ctx, id)
	require.NoError(t, err)
	entries, err := env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, succeeded+1) // opening + landed deposits

	// every landed append advanced the version exactly once, and the
	// running-balance chain is strictly consistent with no gaps
	assert.Equal(t, succeeded, acc.Version)
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Credit).Sub(e.Debit)
		require.True(t, e.RunningBalance.Equal(balance),
			"chain broken at %s: snapshot %s, want %s", e.ID, e.RunningBalance, balance)
	}
	want := dec("1000").Add(dec("100").Mul(decimal.NewFromInt(int64(succeeded))))
	assert.True(t, acc.RunningBalance.Equal(want))
}

func TestAdjustmentPostsCommissionDisbursement(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "100000")

	ref := "INV-2026-0042"
	resp, err := env.svc.Adjust(ctx, "admin1", id, dto.AdjustmentRequest{
		Type:      model.EntryCommission,
		Debit:     dec("5000"),
		Reference: &ref,
	})
	require.NoError(t, err)
	assert.Equal(t, model.EntryCommission, resp.Type)
	assert.True(t, resp.RunningBalance.Equal(dec("95000")))

	entries, err := env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.EntryCommission, entries[1].Type)
	assert.True(t, entries[1].Debit.Equal(dec("5000")))

	// omitting the type still posts a plain adjustment
	plain, err := env.svc.Adjust(ctx, "admin1", id, dto.AdjustmentRequest{Credit: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, model.EntryAdjustment, plain.Type)
}

func TestApplyTaxRequiresSettlement(t *testing.T) {
	env := newTrustEnv(t)
	id := env.openAccount(t, "100000")

	_, err := env.svc.ApplyTaxDeductions(context.Background(), "conveyancer1", id, dto.ApplyTaxDeductionsRequest{})
	assert.ErrorIs(t, err, service.ErrNoSettlement)
}

func TestApplyTaxPostsDeductionsAndRemittances(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "100000")
	env.settle(t, id)

	summary, err := env.svc.ApplyTaxDeductions(ctx, "conveyancer1", id, dto.ApplyTaxDeductionsRequest{})
	require.NoError(t, err)
	assert.True(t, summary.CGT.Equal(dec("5000")))
	assert.True(t, summary.VATOnCommission.Equal(dec("750")))
	assert.True(t, summary.VAT.IsZero())
	assert.True(t, summary.Total.Equal(dec("5750")))
	assert.Equal(t, 0, summary.PaidToZIMRACount) // no reference: remittances stay pending

	entries, err := env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 3) // opening + CGT + VAT on commission
	assert.Equal(t, model.EntryCGT, entries[1].Type)
	assert.True(t, entries[1].Debit.Equal(dec("5000")))
	assert.Equal(t, model.EntryVATOnCommission, entries[2].Type)
	assert.True(t, entries[2].Debit.Equal(dec("750")))
	assert.True(t, entries[2].RunningBalance.Equal(dec("94250")))

	remits, err := env.repo.ListRemittances(ctx, id)
	require.NoError(t, err)
	require.Len(t, remits, 2)
	for _, rem := range remits {
		assert.Equal(t, model.RemittancePending, rem.Status)
		assert.Nil(t, rem.Reference)
	}

	acc, err := env.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, acc.RunningBalance.Equal(dec("94250")))
	require.NotNil(t, acc.TaxAppliedVersion)
	assert.Equal(t, 1, *acc.TaxAppliedVersion)
	assert.Equal(t, "TAXES_APPLIED", acc.WorkflowState)
}

func TestApplyTaxWithPaymentReferenceMarksSubmitted(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "100000")
	env.settle(t, id)

	ref := "ZIMRA-2026-000417"
	summary, err := env.svc.ApplyTaxDeductions(ctx, "conveyancer1", id, dto.ApplyTaxDeductionsRequest{
		ZIMRAPaymentReference: &ref,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PaidToZIMRACount)

	remits, err := env.repo.ListRemittances(ctx, id)
	require.NoError(t, err)
	require.Len(t, remits, 2)
	for _, rem := range remits {
		assert.Equal(t, model.RemittanceSubmitted, rem.Status)
		require.NotNil(t, rem.Reference)
		assert.Equal(t, ref, *rem.Reference)
		assert.NotNil(t, rem.SubmittedAt)
	}
}

func TestApplyTaxIdempotentPerSettlementVersion(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "100000")
	env.settle(t, id)

	first, err := env.svc.ApplyTaxDeductions(ctx, "conveyancer1", id, dto.ApplyTaxDeductionsRequest{})
	require.NoError(t, err)

	// same settlement version: returns the summary, posts nothing
	again, err := env.svc.ApplyTaxDeductions(ctx, "conveyancer1", id, dto.ApplyTaxDeductionsRequest{})
	require.NoError(t, err)
	assert.True(t, again.Total.Equal(first.Total))
	entries, err := env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// recalculating produces version 2, which may be applied afresh
	rec, err := env.svc.CalculateSettlement(ctx, "conveyancer1", id, dto.CalculateSettlementRequest{
		SalePrice: dec("100000"),
		CGTAmount: decPtr("3000"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)

	_, err = env.svc.ApplyTaxDeductions(ctx, "conveyancer1", id, dto.ApplyTaxDeductionsRequest{})
	require.NoError(t, err)
	entries, err = env.repo.ListEntriesAsc(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 5) // v2: CGT 3000 + VAT on commission 750

	acc, err := env.repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, acc.TaxAppliedVersion)
	assert.Equal(t, 2, *acc.TaxAppliedVersion)
}

func TestCloseLocksFinalSettlement(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "100000")
	rec := env.settle(t, id)
	assert.False(t, rec.Locked)

	_, err := env.svc.Close(ctx, "admin1", id, dto.CloseTrustAccountRequest{})
	require.NoError(t, err)

	full, err := env.svc.Full(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, full.Settlement)
	assert.True(t, full.Settlement.Locked)
	assert.Equal(t, model.StatusClosed, full.Account.Status)
	assert.True(t, full.Account.Locked)
	require.NotNil(t, full.Account.LockReason)
	assert.Equal(t, "trust account closed after settlement", *full.Account.LockReason)
}

func TestWorkflowTransitionEndpointSemantics(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "100000")

	// SETTLED requires a settlement on record
	_, err := env.svc.Transition(ctx, "conveyancer1", id, model.StatusSettled)
	assert.ErrorIs(t, err, service.ErrNoSettlement)

	// OPEN → CLOSED skips SETTLED
	_, err = env.svc.Transition(ctx, "admin1", id, model.StatusClosed)
	assert.ErrorIs(t, err, service.ErrInvalidWorkflowTransition)

	env.settle(t, id)

	// CLOSED delegates to the close flow: lock, closing balance, audit
	resp, err := env.svc.Transition(ctx, "admin1", id, model.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, resp.Status)
	assert.True(t, resp.Locked)
	require.NotNil(t, resp.ClosingBalance)
	assert.True(t, resp.ClosingBalance.Equal(dec("100000")))
}

func TestFullSnapshotNewestFirstLedger(t *testing.T) {
	env := newTrustEnv(t)
	ctx := context.Background()
	id := env.openAccount(t, "40000")
	_, err := env.svc.Deposit(ctx, "conveyancer1", id, dto.DepositRequest{Amount: dec("60000")})
	require.NoError(t, err)

	full, err := env.svc.Full(ctx, id)
	require.NoError(t, err)
	require.Len(t, full.Ledger, 2)
	// display order is newest first
	assert.True(t, full.Ledger[0].Credit.Equal(dec("60000")))
	assert.True(t, full.Ledger[1].Credit.Equal(dec("40000")))
	assert.Nil(t, full.Settlement)
	assert.True(t, full.TaxSummary.Total.IsZero())
}
