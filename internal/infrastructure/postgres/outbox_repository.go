package postgres

import (
	"context"
	"fmt"

	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo implements OutboxRepository over PostgreSQL.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository builds the adapter. Pass pool or tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Create writes one intent row (inside the sale transaction).
func (r *OutboxRepo) Create(ctx context.Context, entry *entity.OutboxEntry) error {
	query := `
		INSERT INTO outbox_entries (id, sale_id, kind, status, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.SaleID, entry.Kind, entry.Status,
		entry.Attempts, nullIfEmpty(entry.LastError), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListPending returns up to limit pending entries, oldest first. SKIP LOCKED
// only guards claims while a surrounding transaction holds the row locks; on
// a pool-bound (autocommit) query they are released at statement end, so
// delivery is at-least-once and handlers must tolerate redelivery.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]*entity.OutboxEntry, error) {
	query := `
		SELECT id, sale_id, kind, status, attempts, last_error, created_at
		FROM outbox_entries WHERE status = 'pending'
		ORDER BY created_at LIMIT $1
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.OutboxEntry
	for rows.Next() {
		var e entity.OutboxEntry
		var lastError *string
		if err := rows.Scan(&e.ID, &e.SaleID, &e.Kind, &e.Status,
			&e.Attempts, &lastError, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		e.LastError = deref(lastError)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// MarkDone finishes an entry.
func (r *OutboxRepo) MarkDone(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE outbox_entries SET status = 'done', processed_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark outbox entry done: %w", err)
	}
	return nil
}

// MarkFailed records one failed attempt. Entries past maxAttempts move to
// failed, otherwise stay pending for the next poll.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id, lastError string, maxAttempts int) error {
	query := `
		UPDATE outbox_entries
		SET attempts = attempts + 1,
		    last_error = $2,
		    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END,
		    processed_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, lastError, maxAttempts)
	if err != nil {
		return fmt.Errorf("mark outbox entry failed: %w", err)
	}
	return nil
}
