package inventory

import (
	"context"

	"github.com/openretail/pos-backend/internal/domain/repository"
)

// TxRunner runs fn inside one database transaction with tx-bound repositories.
// Commit on nil, rollback on error. The ctx handed to fn may carry the
// transaction deadline; all statements inside the transaction must use it.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movements repository.InventoryMovementRepository,
		products repository.ProductRepository,
	) error) error
}
