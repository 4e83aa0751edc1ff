package infra

// pdf.go — A4 statement generation using go-pdf/fpdf.
// One generator covers the five report types the reports endpoint serves:
//   - buyer-statement:      ledger from the buyer's side
//   - seller-settlement:    settlement statement with deduction lines
//   - trust-reconciliation: chronological ledger with running balances
//   - tax-zimra:            tax deductions and their remittance status
//   - audit-log:            the account's audit trail
//
// The output file is saved to storagePath/{reportType}_{accountID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"proptrust/internal/dto"

	"github.com/go-pdf/fpdf"
)

// Report type identifiers accepted by GenerateReportPDF.
const (
	ReportBuyerStatement      = "buyer-statement"
	ReportSellerSettlement    = "seller-settlement"
	ReportTrustReconciliation = "trust-reconciliation"
	ReportTaxZIMRA            = "tax-zimra"
	ReportAuditLog            = "audit-log"
)

// ValidReportType reports whether the handler should accept the identifier.
func ValidReportType(reportType string) bool {
	switch reportType {
	case ReportBuyerStatement, ReportSellerSettlement, ReportTrustReconciliation,
		ReportTaxZIMRA, ReportAuditLog:
		return true
	}
	return false
}

// GenerateReportPDF renders the requested statement from a consistent account
// snapshot. Returns the absolute path to the generated file.
func GenerateReportPDF(full *dto.TrustAccountFullResponse, reportType, storagePath string) (string, error) {
	if !ValidReportType(reportType) {
		return "", fmt.Errorf("pdf: unknown report type %q", reportType)
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s.pdf", reportType, full.Account.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	writeHeader(pdf, contentW, reportTitle(reportType), full)

	switch reportType {
	case ReportSellerSettlement:
		writeSettlementBody(pdf, contentW, full)
	case ReportTaxZIMRA:
		writeTaxBody(pdf, contentW, full)
	case ReportAuditLog:
		writeAuditBody(pdf, contentW, full)
	default:
		// buyer-statement and trust-reconciliation are ledger views
		writeLedgerBody(pdf, contentW, full)
	}

	writeFooter(pdf, contentW)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", fileName, err)
	}
	return filePath, nil
}

func reportTitle(reportType string) string {
	switch reportType {
	case ReportBuyerStatement:
		return "Buyer Statement"
	case ReportSellerSettlement:
		return "Seller Settlement Statement"
	case ReportTrustReconciliation:
		return "Trust Account Reconciliation"
	case ReportTaxZIMRA:
		return "ZIMRA Tax Deduction Report"
	case ReportAuditLog:
		return "Audit Trail"
	}
	return "Trust Account Report"
}

func writeHeader(pdf *fpdf.Fpdf, contentW float64, title string, full *dto.TrustAccountFullResponse) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "PropTrust", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Property: "+full.Account.PropertyName, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Buyer: %s    Seller: %s", full.Account.BuyerName, full.Account.SellerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Account status: %s    Generated: %s", full.Account.Status, time.Now().Format("02 Jan 2006 15:04")), "", 1, "L", false, 0, "")

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), 15+contentW, pdf.GetY())
	pdf.Ln(3)
}

// writeLedgerBody prints the full ledger chronologically with running balances.
func writeLedgerBody(pdf *fpdf.Fpdf, contentW float64, full *dto.TrustAccountFullResponse) {
	colDate := contentW * 0.18
	colType := contentW * 0.30
	colDebit := contentW * 0.16
	colCredit := contentW * 0.16
	colBal := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colDate, 6, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colType, 6, "Entry", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colDebit, 6, "Debit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colCredit, 6, "Credit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colBal, 6, "Balance", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	// Ledger arrives newest-first; statements read top-down in time order.
	for i := len(full.Ledger) - 1; i >= 0; i-- {
		e := full.Ledger[i]
		pdf.CellFormat(colDate, 5, shortDate(e.CreatedAt), "", 0, "L", false, 0, "")
		pdf.CellFormat(colType, 5, e.Type, "", 0, "L", false, 0, "")
		pdf.CellFormat(colDebit, 5, amountOrDash(e.Debit.StringFixed(2), e.Debit.IsZero()), "", 0, "R", false, 0, "")
		pdf.CellFormat(colCredit, 5, amountOrDash(e.Credit.StringFixed(2), e.Credit.IsZero()), "", 0, "R", false, 0, "")
		pdf.CellFormat(colBal, 5, e.RunningBalance.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colDate+colType+colDebit+colCredit, 7, "Running balance:", "T", 0, "L", false, 0, "")
	pdf.CellFormat(colBal, 7, "$"+full.Account.RunningBalance.StringFixed(2), "T", 1, "R", false, 0, "")
}

func writeSettlementBody(pdf *fpdf.Fpdf, contentW float64, full *dto.TrustAccountFullResponse) {
	if full.Settlement == nil {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(contentW, 7, "No settlement has been calculated for this account.", "", 1, "L", false, 0, "")
		return
	}
	s := full.Settlement

	colLabel := contentW * 0.70
	colAmount := contentW * 0.30

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(colLabel, 7, "Sale price", "", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 7, "$"+s.SalePrice.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(colLabel, 7, "Gross proceeds", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 7, "$"+s.GrossProceeds.StringFixed(2), "B", 1, "R", false, 0, "")

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 7, "Deductions", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, d := range s.Deductions {
		label := deductionLabel(d.Type)
		if d.Type == "CGT" && s.CGTManual {
			label += " (manual assessment)"
		}
		pdf.CellFormat(colLabel, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, 6, "-$"+d.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(colLabel, 8, "NET PAYOUT TO SELLER:", "T", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 8, "$"+s.NetPayout.StringFixed(2), "T", 1, "R", false, 0, "")

	if s.NetPayout.IsNegative() {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 5, "Deductions exceed gross proceeds; the shortfall is payable by the seller.", "", 1, "L", false, 0, "")
	}
}

func writeTaxBody(pdf *fpdf.Fpdf, contentW float64, full *dto.TrustAccountFullResponse) {
	colLabel := contentW * 0.70
	colAmount := contentW * 0.30

	pdf.SetFont("Helvetica", "", 10)
	rows := []struct {
		label  string
		amount string
	}{
		{"Capital gains tax withheld", full.TaxSummary.CGT.StringFixed(2)},
		{"VAT on sale", full.TaxSummary.VAT.StringFixed(2)},
		{"VAT on agency commission", full.TaxSummary.VATOnCommission.StringFixed(2)},
	}
	for _, r := range rows {
		pdf.CellFormat(colLabel, 6, r.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, 6, "$"+r.amount, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colLabel, 8, "Total due to ZIMRA:", "T", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 8, "$"+full.TaxSummary.Total.StringFixed(2), "T", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Remittances submitted to ZIMRA: %d", full.TaxSummary.PaidToZIMRACount), "", 1, "L", false, 0, "")
}

func writeAuditBody(pdf *fpdf.Fpdf, contentW float64, full *dto.TrustAccountFullResponse) {
	colDate := contentW * 0.18
	colActor := contentW * 0.18
	colAction := contentW * 0.64

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colDate, 6, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colActor, 6, "Actor", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colAction, 6, "Action", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, entry := range full.AuditLogs {
		pdf.CellFormat(colDate, 5, shortDate(entry.CreatedAt), "", 0, "L", false, 0, "")
		pdf.CellFormat(colActor, 5, entry.Actor, "", 0, "L", false, 0, "")
		pdf.CellFormat(colAction, 5, truncate(entry.Action, 78), "", 1, "L", false, 0, "")
	}
}

func writeFooter(pdf *fpdf.Fpdf, contentW float64) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Funds are held in trust and disbursed only per the settlement statement.", "", 1, "C", false, 0, "")
}

func deductionLabel(typ string) string {
	switch typ {
	case "COMMISSION":
		return "Agency commission"
	case "VAT_ON_COMMISSION":
		return "VAT on commission"
	case "CGT":
		return "Capital gains tax"
	case "VAT_ON_SALE":
		return "VAT on sale"
	}
	return typ
}

func shortDate(iso string) string {
	t, err := time.Parse("2006-01-02T15:04:05Z", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

func amountOrDash(s string, zero bool) string {
	if zero {
		return "—"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
