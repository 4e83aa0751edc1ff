package service

import (
	"github.com/shopspring/decimal"

	"proptrust/internal/config"
	"proptrust/internal/dto"
)

// settlement.go — pure settlement calculator.
// No side effects: callable repeatedly with different manual overrides before
// anything is committed. Persisting the projection (and the OPEN → SETTLED
// transition) is the trust service's job.

// Deduction types in fixed display order. The order matters for reproducible
// statements, not for the arithmetic.
const (
	DeductionCommission      = "COMMISSION"
	DeductionVATOnCommission = "VAT_ON_COMMISSION"
	DeductionCGT             = "CGT"
	DeductionVATOnSale       = "VAT_ON_SALE"
)

// SettlementRates are the company/jurisdiction defaults applied when the
// caller omits an amount or rate. All values are fractions (0.05 = 5%).
type SettlementRates struct {
	Commission      decimal.Decimal
	CGT             decimal.Decimal
	VATSale         decimal.Decimal
	VATOnCommission decimal.Decimal
}

// RatesFromConfig converts the configured float defaults into decimals once,
// at wiring time.
func RatesFromConfig(cfg *config.Config) SettlementRates {
	return SettlementRates{
		Commission:      decimal.NewFromFloat(cfg.CommissionRate),
		CGT:             decimal.NewFromFloat(cfg.CGTRate),
		VATSale:         decimal.NewFromFloat(cfg.VATRate),
		VATOnCommission: decimal.NewFromFloat(cfg.VATOnCommissionRate),
	}
}

// Deduction is one line of the settlement statement.
type Deduction struct {
	Type   string
	Amount decimal.Decimal
}

// Settlement is a computed projection of a sale's proceeds into deductions
// and net payout. NetPayout may be negative — deductions exceeding proceeds
// are reported, never clamped.
type Settlement struct {
	SalePrice     decimal.Decimal
	GrossProceeds decimal.Decimal
	Deductions    []Deduction
	NetPayout     decimal.Decimal
	CGTManual     bool
}

// Deduction lookup helpers used when persisting the projection.

func (s Settlement) DeductionAmount(typ string) decimal.Decimal {
	for _, d := range s.Deductions {
		if d.Type == typ {
			return d.Amount
		}
	}
	return decimal.Zero
}

// CalculateSettlement computes the settlement statement for a sale.
//
//	grossProceeds = salePrice (+ salePrice × vatSaleRate when VATable)
//	deductions    = [commission, vatOnCommission, cgt, (vatOnSale)]
//	netPayout     = grossProceeds − Σ(deductions)
//
// A supplied cgt_amount ≥ 0 replaces the computed CGT entirely. Amounts are
// rounded half-up to cents at the point they become statement lines.
func CalculateSettlement(req dto.CalculateSettlementRequest, rates SettlementRates) Settlement {
	salePrice := req.SalePrice.Round(2)

	commission := salePrice.Mul(rates.Commission)
	if req.CommissionAmount != nil {
		commission = *req.CommissionAmount
	}
	commission = commission.Round(2)

	vatOnCommissionRate := rates.VATOnCommission
	if req.VATOnCommissionRate != nil {
		vatOnCommissionRate = *req.VATOnCommissionRate
	}
	vatOnCommission := commission.Mul(vatOnCommissionRate).Round(2)

	cgtRate := rates.CGT
	if req.CGTRate != nil {
		cgtRate = *req.CGTRate
	}
	cgt := salePrice.Mul(cgtRate).Round(2)
	cgtManual := false
	if req.CGTAmount != nil && !req.CGTAmount.IsNegative() {
		cgt = req.CGTAmount.Round(2)
		cgtManual = true
	}

	gross := salePrice
	var vatOnSale decimal.Decimal
	if req.ApplyVATOnSale {
		vatSaleRate := rates.VATSale
		if req.VATSaleRate != nil {
			vatSaleRate = *req.VATSaleRate
		}
		vatOnSale = salePrice.Mul(vatSaleRate).Round(2)
		gross = gross.Add(vatOnSale)
	}

	deductions := []Deduction{
		{Type: DeductionCommission, Amount: commission},
		{Type: DeductionVATOnCommission, Amount: vatOnCommission},
		{Type: DeductionCGT, Amount: cgt},
	}
	if req.ApplyVATOnSale {
		deductions = append(deductions, Deduction{Type: DeductionVATOnSale, Amount: vatOnSale})
	}

	total := decimal.Zero
	for _, d := range deductions {
		total = total.Add(d.Amount)
	}

	return Settlement{
		SalePrice:     salePrice,
		GrossProceeds: gross,
		Deductions:    deductions,
		NetPayout:     gross.Sub(total),
		CGTManual:     cgtManual,
	}
}
