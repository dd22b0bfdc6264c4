package postgres

import (
	"context"
	"fmt"

	"github.com/openretail/pos-backend/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo implements CounterRepository over a counters table. Next is a
// single upsert so two concurrent callers can never observe the same value:
// the row lock taken by the UPDATE serializes them.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository builds the adapter. Pass pool or tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Next returns the next sequence value for prefix. A missing counter row is
// seeded with start and start is the first value returned.
func (r *CounterRepo) Next(ctx context.Context, prefix string, start int64) (int64, error) {
	query := `
		INSERT INTO counters (prefix, last_number)
		VALUES ($1, $2)
		ON CONFLICT (prefix) DO UPDATE SET last_number = counters.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, prefix, start).Scan(&n); err != nil {
		return 0, fmt.Errorf("next counter value: %w", err)
	}
	return n, nil
}
