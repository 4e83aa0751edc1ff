package worker

// remittance_cron.go
// Background goroutine that periodically submits tax remittances stuck in
// status='pending' to the ZIMRA gateway. Uses the Circuit Breaker to avoid
// hammering a downed gateway.

import (
	"context"
	"fmt"
	"time"

	"proptrust/internal/infra"
	"proptrust/internal/model"
	"proptrust/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxRemittanceRetries bounds gateway attempts per remittance before it is
	// marked error and parked in the DLQ.
	MaxRemittanceRetries = 3
)

// RemittanceCronConfig holds all dependencies for the remittance goroutine.
type RemittanceCronConfig struct {
	RemittanceRepo repository.TaxRemittanceRepository
	ZIMRAClient    *infra.ZIMRAClient
	CB             *infra.CircuitBreaker
	RDB            *redis.Client
	BPNumber       string
}

// StartRemittanceCron launches a background goroutine that ticks every 30s,
// queries pending remittances, and submits them through the CB.
// It respects the context for graceful shutdown.
func StartRemittanceCron(ctx context.Context, cfg RemittanceCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("remittance_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("remittance_cron: shutting down")
				return
			case <-ticker.C:
				processRemittances(ctx, cfg)
			}
		}
	}()
}

func processRemittances(ctx context.Context, cfg RemittanceCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed gateway
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("remittance_cron: circuit breaker is open, skipping tick")
		return
	}

	remits, err := cfg.RemittanceRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("remittance_cron: failed to query pending remittances")
		return
	}
	if len(remits) == 0 {
		return
	}

	log.Info().Int("count", len(remits)).Msg("remittance_cron: processing pending remittances")

	for i := range remits {
		rem := &remits[i]

		// Check CB state before each call — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("remittance_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		payload := infra.RemittancePayload{
			BPNumber:     cfg.BPNumber,
			TaxType:      rem.TaxType,
			Amount:       rem.Amount.InexactFloat64(),
			RemittanceID: rem.ID.String(),
			AccountID:    rem.TrustAccountID.String(),
		}

		var resp *infra.RemittanceResponse
		cbErr := cfg.CB.Execute(func() error {
			r, err := cfg.ZIMRAClient.SubmitRemittance(ctx, payload)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})

		if cbErr != nil {
			// Failure — increment retry count, schedule next attempt
			rem.RetryCount++
			errMsg := cbErr.Error()
			rem.LastError = &errMsg
			nextRetry := time.Now().Add(computeRetryBackoff(rem.RetryCount))
			rem.NextRetryAt = &nextRetry

			if rem.RetryCount >= MaxRemittanceRetries {
				rem.Status = model.RemittanceError
				rem.NextRetryAt = nil
				log.Error().
					Str("remittance_id", rem.ID.String()).
					Str("trust_account_id", rem.TrustAccountID.String()).
					Int("retries", rem.RetryCount).
					Msg("remittance_cron: max retries exceeded, moving to error/DLQ")

				dlqPayload := fmt.Sprintf(`{"remittance_id":"%s","trust_account_id":"%s","tax_type":"%s"}`,
					rem.ID, rem.TrustAccountID, rem.TaxType)
				SendToDLQ(ctx, cfg.RDB, QueueReports, "remittance", []byte(dlqPayload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxRemittanceRetries, errMsg),
					rem.RetryCount)
			} else {
				log.Warn().
					Str("remittance_id", rem.ID.String()).
					Int("retry_count", rem.RetryCount).
					Time("next_retry_at", *rem.NextRetryAt).
					Msg("remittance_cron: gateway attempt failed, scheduled next attempt")
			}

			_ = cfg.RemittanceRepo.Update(ctx, rem)
			continue
		}

		// Success path
		if resp != nil && resp.Result == "accepted" {
			now := time.Now().UTC()
			rem.Status = model.RemittanceSubmitted
			ref := resp.PaymentReference
			rem.Reference = &ref
			rem.SubmittedAt = &now
			rem.NextRetryAt = nil
			rem.LastError = nil
			_ = cfg.RemittanceRepo.Update(ctx, rem)

			log.Info().
				Str("payment_reference", ref).
				Str("remittance_id", rem.ID.String()).
				Int("total_retries", rem.RetryCount).
				Msg("remittance_cron: remittance accepted")
		} else if resp != nil {
			rem.Status = model.RemittanceError
			msg := "zimra rejected remittance: result=" + resp.Result
			rem.LastError = &msg
			rem.NextRetryAt = nil
			_ = cfg.RemittanceRepo.Update(ctx, rem)
			log.Warn().
				Str("result", resp.Result).
				Str("remittance_id", rem.ID.String()).
				Msg("remittance_cron: remittance rejected")
		}
	}
}

// computeRetryBackoff returns the delay before the next gateway attempt.
// Schedule: 1m, 5m, 15m.
func computeRetryBackoff(retryCount int) time.Duration {
	switch {
	case retryCount <= 1:
		return time.Minute
	case retryCount == 2:
		return 5 * time.Minute
	default:
		return 15 * time.Minute
	}
}
