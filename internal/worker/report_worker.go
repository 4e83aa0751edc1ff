package worker

// report_worker.go
// Processes closing-pack jobs from QueueReports: renders the seller settlement
// statement for a just-closed trust account and hands it to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"

	"proptrust/internal/dto"
	"proptrust/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AccountSnapshotter provides the consistent account snapshot reports render
// from. Satisfied by the trust service; declared here so workers do not
// depend on the service package.
type AccountSnapshotter interface {
	Full(ctx context.Context, id uuid.UUID) (*dto.TrustAccountFullResponse, error)
}

// ClosingPackWorker builds the closing pack when a trust account closes.
type ClosingPackWorker struct {
	snapshots      AccountSnapshotter
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewClosingPackWorker(snapshots AccountSnapshotter, dispatcher *Dispatcher, pdfStoragePath string) *ClosingPackWorker {
	return &ClosingPackWorker{
		snapshots:      snapshots,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single closing-pack job:
//  1. Parse ClosingPackPayload from the job envelope
//  2. Read the full account snapshot
//  3. Render the seller settlement statement PDF
//  4. Enqueue the email job when the seller has an address on file
func (w *ClosingPackWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ClosingPackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}

	accountID, err := uuid.Parse(payload.TrustAccountID)
	if err != nil {
		log.Error().Str("trust_account_id", payload.TrustAccountID).Msg("report_worker: invalid account id")
		return
	}

	full, err := w.snapshots.Full(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Str("trust_account_id", payload.TrustAccountID).Msg("report_worker: account not found")
		return
	}

	pdfPath, err := infra.GenerateReportPDF(full, infra.ReportSellerSettlement, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("trust_account_id", payload.TrustAccountID).Msg("report_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("trust_account_id", payload.TrustAccountID).Msg("report_worker: closing pack generated")

	sellerEmail := full.Account.SellerEmail
	if sellerEmail == nil || *sellerEmail == "" {
		log.Info().Str("trust_account_id", payload.TrustAccountID).Msg("report_worker: no seller email on file, skipping send")
		return
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nThe sale of %s has been finalised. Your settlement statement is attached.\nNet payout: $%s\n\nPropTrust",
		full.Account.SellerName, full.Account.PropertyName, netPayoutLine(full))
	emailJob := EmailJobPayload{
		ToEmail: *sellerEmail,
		Subject: "Settlement statement — " + full.Account.PropertyName,
		Body:    body,
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", *sellerEmail).Msg("report_worker: failed to enqueue email")
		return
	}
	log.Info().Str("email", *sellerEmail).Msg("report_worker: email job enqueued")
}

func netPayoutLine(full *dto.TrustAccountFullResponse) string {
	if full.Settlement == nil {
		return "0.00"
	}
	return full.Settlement.NetPayout.StringFixed(2)
}
