package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openretail/pos-backend/internal/domain/repository"
)

// TxRunner runs fn inside one sale/refund transaction with tx-bound
// repositories. Commit on nil, rollback on error: no partial stock deduction,
// no orphan sale. The ctx handed to fn may carry the transaction deadline;
// all statements inside the transaction must use it.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		ctx context.Context,
		sales repository.SaleRepository,
		products repository.ProductRepository,
		movements repository.InventoryMovementRepository,
		customers repository.CustomerRepository,
		outbox repository.OutboxRepository,
	) error) error
}

// Ledger applies stock changes inside the caller's transaction. Implemented by
// inventory.LedgerUseCase; failures (e.g. insufficient stock) roll back the
// whole sale.
type Ledger interface {
	ApplyOutInTx(
		ctx context.Context,
		movements repository.InventoryMovementRepository,
		products repository.ProductRepository,
		productID string,
		quantity decimal.Decimal,
		reference, userID string,
		now time.Time,
	) error
	ApplyInInTx(
		ctx context.Context,
		movements repository.InventoryMovementRepository,
		products repository.ProductRepository,
		productID string,
		quantity decimal.Decimal,
		reference, userID string,
		now time.Time,
	) error
}

// InvoiceIssuer issues the next invoice number (post-commit, best effort).
type InvoiceIssuer interface {
	Next(ctx context.Context) (string, error)
}

// Waker nudges the outbox dispatcher so committed intents are picked up
// without waiting for the next poll. Must never block.
type Waker interface {
	Wake()
}

// NoopWaker is used when no dispatcher is wired (tests, tooling).
type NoopWaker struct{}

func (NoopWaker) Wake() {}
