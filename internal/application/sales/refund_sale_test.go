package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/infrastructure/memory"
)

// postAndRefund wires both use cases over one store and posts a 2-unit sale.
func postAndRefund(t *testing.T) (*memory.Store, *sales.RefundSaleUseCase, string) {
	t.Helper()
	store, postUC := newCheckoutEnv(t, defaultSettings())
	resp, err := postUC.PostSale(context.Background(), testCashierID, cartRequest(2))
	require.NoError(t, err)

	refundUC := sales.NewRefundSaleUseCase(store, newLedger(store), store.Sales(), testLogger())
	return store, refundUC, resp.ID
}

func TestRefundRestoresStockAndLoyalty(t *testing.T) {
	ctx := context.Background()
	store, refundUC, saleID := postAndRefund(t)

	require.NoError(t, refundUC.Refund(ctx, saleID, testCashierID))

	sale, err := store.Sales().GetByID(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusRefunded, sale.Status)

	// Stock back to the original 5.
	product, err := store.Products().GetByID(ctx, testProductID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(5)))

	// The award at sale time (+10 on a 100 total) is clawed back.
	customer, err := store.Customers().GetByID(ctx, testCustomerID)
	require.NoError(t, err)
	assert.Zero(t, customer.LoyaltyPoints)

	// Refund movements reference the sale and carry a positive delta.
	movements, err := store.Movements().ListByReference(ctx, "Refund "+saleID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementTypeIn, movements[0].Type)
	assert.True(t, movements[0].Delta.Equal(decimal.NewFromInt(2)))
}

func TestRefundTwiceFails(t *testing.T) {
	ctx := context.Background()
	store, refundUC, saleID := postAndRefund(t)

	require.NoError(t, refundUC.Refund(ctx, saleID, testCashierID))
	err := refundUC.Refund(ctx, saleID, testCashierID)
	require.ErrorIs(t, err, domain.ErrAlreadyRefunded)

	// Stock was restored exactly once.
	product, err := store.Products().GetByID(ctx, testProductID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(5)))
}

// Two refunds racing on one sale must not both commit: the status flip is
// checked inside the transaction, so the loser rolls back before touching
// stock or loyalty.
func TestRefundConcurrentOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	store, refundUC, saleID := postAndRefund(t)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- refundUC.Refund(ctx, saleID, testCashierID)
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, alreadyRefunded int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrAlreadyRefunded):
			alreadyRefunded++
		default:
			t.Fatalf("unexpected refund error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, alreadyRefunded)

	// Stock restored exactly once, loyalty clawed back exactly once.
	product, err := store.Products().GetByID(ctx, testProductID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(5)))

	customer, err := store.Customers().GetByID(ctx, testCustomerID)
	require.NoError(t, err)
	assert.Zero(t, customer.LoyaltyPoints)

	movements, err := store.Movements().ListByReference(ctx, "Refund "+saleID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestRefundUnknownSale(t *testing.T) {
	_, refundUC, _ := postAndRefund(t)
	err := refundUC.Refund(context.Background(), "99999999-9999-9999-9999-999999999999", testCashierID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
