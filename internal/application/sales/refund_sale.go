package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
	"github.com/openretail/pos-backend/pkg/logger"
)

// RefundSaleUseCase reverses a completed sale: status flips to refunded, every
// item's quantity returns to stock with an "in" movement, and the loyalty
// award is taken back. Whole-sale only, all-or-nothing; prior records are
// never deleted.
type RefundSaleUseCase struct {
	txRunner TxRunner
	ledger   Ledger
	sales    repository.SaleRepository
	log      *logger.Logger
}

// NewRefundSaleUseCase builds the use case.
func NewRefundSaleUseCase(txRunner TxRunner, ledger Ledger, sales repository.SaleRepository, log *logger.Logger) *RefundSaleUseCase {
	return &RefundSaleUseCase{txRunner: txRunner, ledger: ledger, sales: sales, log: log}
}

// Refund reverses the sale identified by saleID. userID is the operator
// performing the refund (recorded on the movements).
func (uc *RefundSaleUseCase) Refund(ctx context.Context, saleID, userID string) error {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}
	if sale.Status == entity.SaleStatusRefunded {
		return domain.ErrAlreadyRefunded
	}

	items, err := uc.sales.GetItems(ctx, saleID)
	if err != nil {
		return err
	}

	now := time.Now()
	return uc.txRunner.RunSale(ctx, func(
		ctx context.Context,
		salesRepo repository.SaleRepository,
		products repository.ProductRepository,
		movements repository.InventoryMovementRepository,
		customers repository.CustomerRepository,
		_ repository.OutboxRepository,
	) error {
		// Re-checked inside the transaction: the UPDATE only hits a
		// non-refunded row, so a concurrent refund loses here and rolls back.
		if err := salesRepo.MarkRefunded(ctx, saleID); err != nil {
			return err
		}
		reference := fmt.Sprintf("Refund %s", saleID)
		for _, item := range items {
			if err := uc.ledger.ApplyInInTx(ctx, movements, products, item.ProductID, item.Quantity, reference, userID, now); err != nil {
				return err
			}
		}
		if sale.CustomerID != "" {
			// Mirror of the award at sale time.
			if err := customers.AddLoyaltyPoints(ctx, sale.CustomerID, -loyaltyPoints(sale.Total)); err != nil {
				return err
			}
		}
		return nil
	})
}
