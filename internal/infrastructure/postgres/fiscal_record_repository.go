package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

var _ repository.FiscalRecordRepository = (*FiscalRecordRepo)(nil)

// FiscalRecordRepo implements FiscalRecordRepository over PostgreSQL.
type FiscalRecordRepo struct {
	q Querier
}

// NewFiscalRecordRepository builds the adapter. Pass pool or tx (Querier).
func NewFiscalRecordRepository(q Querier) *FiscalRecordRepo {
	return &FiscalRecordRepo{q: q}
}

const fiscalColumns = `id, sale_id, fiscal_id, qr_code, verification_url, signature,
       status, error_message, retry_count, submitted_at`

// Create appends one submission record.
func (r *FiscalRecordRepo) Create(ctx context.Context, rec *entity.FiscalRecord) error {
	query := `
		INSERT INTO fiscal_records (id, sale_id, fiscal_id, qr_code, verification_url, signature,
		                            status, error_message, retry_count, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.SaleID, nullIfEmpty(rec.FiscalID), nullIfEmpty(rec.QRCode),
		nullIfEmpty(rec.VerificationURL), nullIfEmpty(rec.Signature),
		rec.Status, nullIfEmpty(rec.ErrorMessage), rec.RetryCount, rec.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fiscal record: %w", err)
	}
	return nil
}

func scanFiscalRecord(row pgx.Row) (*entity.FiscalRecord, error) {
	var rec entity.FiscalRecord
	var fiscalID, qrCode, verificationURL, signature, errorMessage *string
	err := row.Scan(
		&rec.ID, &rec.SaleID, &fiscalID, &qrCode, &verificationURL, &signature,
		&rec.Status, &errorMessage, &rec.RetryCount, &rec.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.FiscalID = deref(fiscalID)
	rec.QRCode = deref(qrCode)
	rec.VerificationURL = deref(verificationURL)
	rec.Signature = deref(signature)
	rec.ErrorMessage = deref(errorMessage)
	return &rec, nil
}

// GetLatestBySaleID returns the most recent record for a sale, nil when none.
func (r *FiscalRecordRepo) GetLatestBySaleID(ctx context.Context, saleID string) (*entity.FiscalRecord, error) {
	rec, err := scanFiscalRecord(r.q.QueryRow(ctx,
		`SELECT `+fiscalColumns+` FROM fiscal_records WHERE sale_id = $1 ORDER BY submitted_at DESC LIMIT 1`,
		saleID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal record: %w", err)
	}
	return rec, nil
}

// ListFailed returns failed records still below the retry bound, oldest first.
func (r *FiscalRecordRepo) ListFailed(ctx context.Context, maxRetries int) ([]*entity.FiscalRecord, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+fiscalColumns+` FROM fiscal_records
		 WHERE status = 'failed' AND retry_count < $1 ORDER BY submitted_at`,
		maxRetries,
	)
	if err != nil {
		return nil, fmt.Errorf("list failed fiscal records: %w", err)
	}
	defer rows.Close()
	return collectFiscalRecords(rows)
}

// ListByPeriod returns records for sales created inside [start, end].
func (r *FiscalRecordRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]*entity.FiscalRecord, error) {
	query := `
		SELECT ` + fiscalColumns + ` FROM fiscal_records
		WHERE sale_id IN (SELECT id FROM sales WHERE created_at >= $1 AND created_at <= $2)
		ORDER BY submitted_at`
	rows, err := r.q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("list fiscal records by period: %w", err)
	}
	defer rows.Close()
	return collectFiscalRecords(rows)
}

// MarkSubmitted flips a record to submitted with the authority identifiers.
func (r *FiscalRecordRepo) MarkSubmitted(ctx context.Context, id, fiscalID, qrCode, verificationURL string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE fiscal_records
		 SET status = 'submitted', fiscal_id = $2, qr_code = $3, verification_url = $4,
		     error_message = NULL, submitted_at = now()
		 WHERE id = $1`,
		id, nullIfEmpty(fiscalID), nullIfEmpty(qrCode), nullIfEmpty(verificationURL),
	)
	if err != nil {
		return fmt.Errorf("mark fiscal record submitted: %w", err)
	}
	return nil
}

// MarkFailed increments retry_count and replaces the error message.
func (r *FiscalRecordRepo) MarkFailed(ctx context.Context, id, errorMessage string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE fiscal_records
		 SET status = 'failed', error_message = $2, retry_count = retry_count + 1, submitted_at = now()
		 WHERE id = $1`,
		id, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("mark fiscal record failed: %w", err)
	}
	return nil
}

func collectFiscalRecords(rows pgx.Rows) ([]*entity.FiscalRecord, error) {
	var list []*entity.FiscalRecord
	for rows.Next() {
		rec, err := scanFiscalRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
