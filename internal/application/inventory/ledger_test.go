package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
	"github.com/openretail/pos-backend/internal/infrastructure/memory"
)

const (
	productID = "11111111-1111-1111-1111-111111111111"
	operator  = "33333333-3333-3333-3333-333333333333"
)

func newLedgerEnv(t *testing.T, stock int64) (*memory.Store, *inventory.LedgerUseCase) {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(&entity.Product{
		ID:            productID,
		Name:          "Milk 1L",
		SKU:           "MLK-001",
		Cost:          decimal.NewFromInt(2),
		StockQuantity: decimal.NewFromInt(stock),
		MinStockLevel: decimal.NewFromInt(3),
		IsActive:      true,
	})
	return store, inventory.NewLedgerUseCase(store, store.Movements(), store.Products())
}

func TestStockIn(t *testing.T) {
	ctx := context.Background()
	store, ledger := newLedgerEnv(t, 10)

	mov, err := ledger.StockIn(ctx, operator, dto.StockInRequest{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(4),
		Reference: "PO-123",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIn, mov.Type)
	assert.True(t, mov.Delta.Equal(decimal.NewFromInt(4)))

	product, err := store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(14)))
}

func TestStockInValidation(t *testing.T) {
	ctx := context.Background()
	_, ledger := newLedgerEnv(t, 10)

	_, err := ledger.StockIn(ctx, operator, dto.StockInRequest{ProductID: productID, Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.StockIn(ctx, operator, dto.StockInRequest{Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustRecordsSignedDelta(t *testing.T) {
	ctx := context.Background()
	store, ledger := newLedgerEnv(t, 10)

	// Downward correction: 10 -> 7, delta -3.
	mov, err := ledger.Adjust(ctx, operator, dto.AdjustStockRequest{
		ProductID:   productID,
		NewQuantity: decimal.NewFromInt(7),
		Notes:       "cycle count",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAdjustment, mov.Type)
	assert.True(t, mov.Delta.Equal(decimal.NewFromInt(-3)))
	assert.True(t, mov.Quantity.Equal(decimal.NewFromInt(3)), "quantity is the magnitude")

	// Upward correction: 7 -> 12, delta +5.
	mov, err = ledger.Adjust(ctx, operator, dto.AdjustStockRequest{
		ProductID:   productID,
		NewQuantity: decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	assert.True(t, mov.Delta.Equal(decimal.NewFromInt(5)))

	product, err := store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(12)))
}

func TestAdjustRejectsNegativeTarget(t *testing.T) {
	_, ledger := newLedgerEnv(t, 10)
	_, err := ledger.Adjust(context.Background(), operator, dto.AdjustStockRequest{
		ProductID:   productID,
		NewQuantity: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustUnknownProduct(t *testing.T) {
	_, ledger := newLedgerEnv(t, 10)
	_, err := ledger.Adjust(context.Background(), operator, dto.AdjustStockRequest{
		ProductID:   "99999999-9999-9999-9999-999999999999",
		NewQuantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyOutRejectsOversell(t *testing.T) {
	ctx := context.Background()
	store, ledger := newLedgerEnv(t, 2)

	err := store.Run(ctx, func(ctx context.Context, movements repository.InventoryMovementRepository, products repository.ProductRepository) error {
		return ledger.ApplyOutInTx(ctx, movements, products, productID, decimal.NewFromInt(3), "Sale x", operator, time.Now())
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Rolled back: stock and ledger untouched.
	product, err := store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(2)))

	movements, err := store.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestMovementsDefaultLimit(t *testing.T) {
	ctx := context.Background()
	_, ledger := newLedgerEnv(t, 1000)

	for i := 0; i < 105; i++ {
		_, err := ledger.StockIn(ctx, operator, dto.StockInRequest{
			ProductID: productID,
			Quantity:  decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}
	movements, err := ledger.Movements(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, movements, 100)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	store, ledger := newLedgerEnv(t, 2) // at min level 3 -> low stock
	store.AddProduct(&entity.Product{
		ID:            "44444444-4444-4444-4444-444444444444",
		Name:          "Sugar 1kg",
		SKU:           "SUG-001",
		Cost:          decimal.NewFromInt(1),
		StockQuantity: decimal.Zero,
		IsActive:      true,
	})

	summary, err := ledger.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalProducts)
	assert.True(t, summary.TotalItems.Equal(decimal.NewFromInt(2)))
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, int64(2), summary.LowStockCount)
	assert.Equal(t, int64(1), summary.OutOfStockCount)
}
