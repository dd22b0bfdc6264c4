package repository

import (
	"context"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// OutboxRepository persists post-commit side-effect intents. Entries are
// written in the same transaction as the sale and claimed by the dispatcher.
type OutboxRepository interface {
	Create(ctx context.Context, entry *entity.OutboxEntry) error
	// ListPending returns up to limit pending entries, oldest first.
	ListPending(ctx context.Context, limit int) ([]*entity.OutboxEntry, error)
	MarkDone(ctx context.Context, id string) error
	// MarkFailed increments attempts and stores the error; entries past
	// maxAttempts move to status failed, otherwise stay pending.
	MarkFailed(ctx context.Context, id, lastError string, maxAttempts int) error
}
