package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

// LedgerUseCase keeps the movement log and the stock-quantity cache
// transactionally consistent: both change inside the same transaction with the
// product row locked (SELECT FOR UPDATE), so they never diverge and concurrent
// writers on one product serialize.
type LedgerUseCase struct {
	txRunner  TxRunner
	movements repository.InventoryMovementRepository
	products  repository.ProductRepository
}

// NewLedgerUseCase builds the use case. movements and products are pool-bound
// repositories used for reads outside transactions.
func NewLedgerUseCase(txRunner TxRunner, movements repository.InventoryMovementRepository, products repository.ProductRepository) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, movements: movements, products: products}
}

// StockIn adds quantity to a product and appends an "in" movement.
func (uc *LedgerUseCase) StockIn(ctx context.Context, userID string, in dto.StockInRequest) (*entity.InventoryMovement, error) {
	if in.ProductID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		movements repository.InventoryMovementRepository,
		products repository.ProductRepository,
	) error {
		var err error
		mov, err = applyIn(ctx, movements, products, in.ProductID, in.Quantity, in.Reference, in.Notes, userID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// Adjust sets the absolute stock level of a product. The ledger records the
// signed delta (target minus current) together with its magnitude, so the
// direction of the correction is unambiguous.
func (uc *LedgerUseCase) Adjust(ctx context.Context, userID string, in dto.AdjustStockRequest) (*entity.InventoryMovement, error) {
	if in.ProductID == "" || in.NewQuantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		movements repository.InventoryMovementRepository,
		products repository.ProductRepository,
	) error {
		product, err := products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		delta := in.NewQuantity.Sub(product.StockQuantity)
		if err := products.UpdateStock(ctx, in.ProductID, in.NewQuantity); err != nil {
			return err
		}
		mov = &entity.InventoryMovement{
			ID:        uuid.New().String(),
			ProductID: in.ProductID,
			Type:      entity.MovementTypeAdjustment,
			Quantity:  delta.Abs(),
			Delta:     delta,
			Notes:     in.Notes,
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		return movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// Movements lists ledger entries with optional filters.
func (uc *LedgerUseCase) Movements(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return uc.movements.List(ctx, filter)
}

// Summary returns the stock aggregate over active products.
func (uc *LedgerUseCase) Summary(ctx context.Context) (*repository.StockSummary, error) {
	return uc.products.StockSummary(ctx)
}

// ApplyOutInTx removes quantity from stock and appends an "out" movement using
// the caller's tx-bound repositories (same transaction as the sale). The
// product row is locked and the decrement is rejected when stock is
// insufficient, failing the whole transaction.
func (uc *LedgerUseCase) ApplyOutInTx(
	ctx context.Context,
	movements repository.InventoryMovementRepository,
	products repository.ProductRepository,
	productID string,
	quantity decimal.Decimal,
	reference, userID string,
	now time.Time,
) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	product, err := products.GetForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.StockQuantity.LessThan(quantity) {
		return domain.ErrInsufficientStock
	}
	if err := products.UpdateStock(ctx, productID, product.StockQuantity.Sub(quantity)); err != nil {
		return err
	}
	mov := &entity.InventoryMovement{
		ID:        uuid.New().String(),
		ProductID: productID,
		Type:      entity.MovementTypeOut,
		Quantity:  quantity,
		Delta:     quantity.Neg(),
		Reference: reference,
		UserID:    userID,
		CreatedAt: now,
	}
	return movements.Create(ctx, mov)
}

// ApplyInInTx adds quantity back to stock and appends an "in" movement using
// the caller's tx-bound repositories (refund path).
func (uc *LedgerUseCase) ApplyInInTx(
	ctx context.Context,
	movements repository.InventoryMovementRepository,
	products repository.ProductRepository,
	productID string,
	quantity decimal.Decimal,
	reference, userID string,
	now time.Time,
) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	_, err := applyIn(ctx, movements, products, productID, quantity, reference, "", userID, now)
	return err
}

func applyIn(
	ctx context.Context,
	movements repository.InventoryMovementRepository,
	products repository.ProductRepository,
	productID string,
	quantity decimal.Decimal,
	reference, notes, userID string,
	now time.Time,
) (*entity.InventoryMovement, error) {
	product, err := products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := products.UpdateStock(ctx, productID, product.StockQuantity.Add(quantity)); err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		ID:        uuid.New().String(),
		ProductID: productID,
		Type:      entity.MovementTypeIn,
		Quantity:  quantity,
		Delta:     quantity,
		Reference: reference,
		Notes:     notes,
		UserID:    userID,
		CreatedAt: now,
	}
	if err := movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
