package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

// Ensure TxRunner implements the application ports.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside a PostgreSQL transaction. txTimeout
// bounds the whole transaction, begin to commit; zero disables the bound.
type TxRunner struct {
	pool      *pgxpool.Pool
	txTimeout time.Duration
}

// NewTxRunner builds the runner over the pool.
func NewTxRunner(pool *pgxpool.Pool, txTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, txTimeout: txTimeout}
}

// boundCtx derives the transaction context. A non-positive timeout returns
// the caller's context unchanged.
func boundCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Run starts a transaction with ledger repositories, commits on nil and rolls
// back on error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movements repository.InventoryMovementRepository,
	products repository.ProductRepository,
) error) error {
	ctx, cancel := boundCtx(ctx, r.txTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewInventoryMovementRepository(tx), NewProductRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSale starts a transaction with the full checkout repository set (sale
// poster and refund processor).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	ctx context.Context,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	movements repository.InventoryMovementRepository,
	customers repository.CustomerRepository,
	outbox repository.OutboxRepository,
) error) error {
	ctx, cancel := boundCtx(ctx, r.txTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		ctx,
		NewSaleRepository(tx),
		NewProductRepository(tx),
		NewInventoryMovementRepository(tx),
		NewCustomerRepository(tx),
		NewOutboxRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
