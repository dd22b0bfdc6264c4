package repository

import "context"

// CounterRepository issues monotonically increasing sequence values per prefix.
// Next must be atomic under concurrent callers: two calls never return the same
// value for the same prefix (UPDATE ... RETURNING on a counter row, not a
// scan-max-and-increment).
type CounterRepository interface {
	// Next returns the next sequence value for prefix. A missing counter row is
	// created seeded with start, and start is the first value returned.
	Next(ctx context.Context, prefix string, start int64) (int64, error)
}
