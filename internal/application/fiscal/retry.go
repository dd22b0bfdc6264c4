package fiscal

import (
	"context"
	"time"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// RetryFailed sweeps failed records still under the retry bound and resubmits
// each one. Success flips the record to submitted; failure increments
// retry_count and replaces the error message. A record that reaches the bound
// stays failed until an operator intervenes through the manual retry endpoint.
func (uc *SubmissionUseCase) RetryFailed(ctx context.Context) error {
	st, err := uc.settings.Current(ctx)
	if err != nil {
		return err
	}
	if !st.FiscalEnabled() {
		return nil
	}
	maxRetries := st.FiscalRetryAttempts()

	failed, err := uc.records.ListFailed(ctx, maxRetries)
	if err != nil {
		return err
	}
	for _, record := range failed {
		if err := uc.retryRecord(ctx, record); err != nil {
			uc.log.Warn().Err(err).
				Str("sale_id", record.SaleID).
				Int("retry_count", record.RetryCount+1).
				Msg("fiscal retry failed")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// retryRecord resubmits one failed record, updating it in place instead of
// appending a new attempt row.
func (uc *SubmissionUseCase) retryRecord(ctx context.Context, record *entity.FiscalRecord) error {
	st, err := uc.settings.Current(ctx)
	if err != nil {
		return err
	}
	sale, err := uc.sales.GetByID(ctx, record.SaleID)
	if err != nil || sale == nil {
		if err == nil {
			err = uc.records.MarkFailed(ctx, record.ID, "sale no longer exists")
		}
		return err
	}
	items, err := uc.sales.GetItems(ctx, record.SaleID)
	if err != nil {
		return err
	}

	resp, _, attemptErr := uc.attempt(ctx, sale, items, st)
	if attemptErr != nil {
		if markErr := uc.records.MarkFailed(ctx, record.ID, attemptErr.Error()); markErr != nil {
			return markErr
		}
		return attemptErr
	}
	if err := uc.records.MarkSubmitted(ctx, record.ID, resp.FiscalID, resp.QRCode, resp.VerificationURL); err != nil {
		return err
	}
	uc.log.Info().Str("sale_id", record.SaleID).Str("fiscal_id", resp.FiscalID).Msg("fiscal retry succeeded")
	return nil
}

// RunRetryLoop sweeps periodically until ctx is cancelled. interval bounds the
// backoff between automatic attempts for any given record.
func (uc *SubmissionUseCase) RunRetryLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := uc.RetryFailed(ctx); err != nil && ctx.Err() == nil {
				uc.log.Error().Err(err).Msg("fiscal retry sweep")
			}
		}
	}
}
