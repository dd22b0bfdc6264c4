package repository

import (
	"context"
	"time"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// FiscalRecordRepository persists submission attempts. Records accumulate as
// history; the latest row per sale is the current status.
type FiscalRecordRepository interface {
	Create(ctx context.Context, record *entity.FiscalRecord) error
	GetLatestBySaleID(ctx context.Context, saleID string) (*entity.FiscalRecord, error)
	// ListFailed returns failed records still below the retry bound.
	ListFailed(ctx context.Context, maxRetries int) ([]*entity.FiscalRecord, error)
	// ListByPeriod returns records for sales created in [start, end] (fiscal report).
	ListByPeriod(ctx context.Context, start, end time.Time) ([]*entity.FiscalRecord, error)
	MarkSubmitted(ctx context.Context, id, fiscalID, qrCode, verificationURL string) error
	// MarkFailed increments retry_count and replaces the error message.
	MarkFailed(ctx context.Context, id, errorMessage string) error
}
