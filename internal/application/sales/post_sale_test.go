package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/application/numbering"
	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
	"github.com/openretail/pos-backend/internal/infrastructure/memory"
	"github.com/openretail/pos-backend/pkg/logger"
)

const (
	testProductID  = "11111111-1111-1111-1111-111111111111"
	testCustomerID = "22222222-2222-2222-2222-222222222222"
	testCashierID  = "33333333-3333-3333-3333-333333333333"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func newLedger(store *memory.Store) *inventory.LedgerUseCase {
	return inventory.NewLedgerUseCase(store, store.Movements(), store.Products())
}

func defaultSettings() settings.Settings {
	return settings.Settings{
		settings.KeyFiscalEnabled:    "1",
		settings.KeyInvoiceAutoPrint: "1",
		settings.KeyInvoicePrefix:    "INV-",
		settings.KeyInvoiceStart:     "1000",
	}
}

// newCheckoutEnv wires the sale poster against the in-memory store.
func newCheckoutEnv(t *testing.T, st settings.Settings) (*memory.Store, *sales.PostSaleUseCase) {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(&entity.Product{
		ID:            testProductID,
		Name:          "Coffee Beans 1kg",
		SKU:           "COF-001",
		Price:         decimal.NewFromInt(50),
		Cost:          decimal.NewFromInt(30),
		StockQuantity: decimal.NewFromInt(5),
		IsActive:      true,
	})
	store.AddCustomer(&entity.Customer{ID: testCustomerID, Name: "Ana Gomez"})
	store.AddUser(&entity.User{ID: testCashierID, Username: "cashier1", FullName: "Luis Perez", Role: entity.RoleCashier})

	provider := settings.Static{S: st}
	ledger := newLedger(store)
	issuer := numbering.NewIssuer(store.Counters(), provider)
	uc := sales.NewPostSaleUseCase(
		store, ledger, issuer, provider,
		store.Sales(), store.Customers(), store.Users(),
		sales.NoopWaker{}, testLogger(),
	)
	return store, uc
}

func cartRequest(quantity int64) dto.CreateSaleRequest {
	qty := decimal.NewFromInt(quantity)
	unit := decimal.NewFromInt(50)
	total := qty.Mul(unit)
	return dto.CreateSaleRequest{
		CustomerID: testCustomerID,
		Items: []dto.SaleItemRequest{{
			ProductID:   testProductID,
			ProductName: "Coffee Beans 1kg",
			Quantity:    qty,
			UnitPrice:   unit,
			Total:       total,
		}},
		Subtotal:      total,
		Total:         total,
		PaymentMethod: entity.PaymentMethodCash,
	}
}

func TestPostSaleHappyPath(t *testing.T) {
	ctx := context.Background()
	store, uc := newCheckoutEnv(t, defaultSettings())

	resp, err := uc.PostSale(ctx, testCashierID, cartRequest(2))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, entity.SaleStatusCompleted, resp.Status)
	assert.Equal(t, "INV-001000", resp.InvoiceNumber)
	assert.Equal(t, "Ana Gomez", resp.CustomerName)
	assert.Equal(t, "Luis Perez", resp.CashierName)
	require.Len(t, resp.Items, 1)

	// Stock decremented and ledger entry written.
	product, err := store.Products().GetByID(ctx, testProductID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(3)), "stock should drop 5 -> 3")

	movements, err := store.Movements().ListByReference(ctx, "Sale "+resp.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementTypeOut, movements[0].Type)
	assert.True(t, movements[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, movements[0].Delta.Equal(decimal.NewFromInt(-2)), "delta carries the sign")

	// 1 point per 10 currency units on a 100 total.
	customer, err := store.Customers().GetByID(ctx, testCustomerID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), customer.LoyaltyPoints)

	// Fiscal submission and receipt print were queued durably.
	pending, err := store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	kinds := []string{pending[0].Kind, pending[1].Kind}
	assert.Contains(t, kinds, entity.OutboxKindFiscalSubmit)
	assert.Contains(t, kinds, entity.OutboxKindPrintReceipt)
}

func TestPostSaleInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	store, uc := newCheckoutEnv(t, defaultSettings())

	_, err := uc.PostSale(ctx, testCashierID, cartRequest(10))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nothing committed: stock, sales, movements, loyalty all untouched.
	product, err := store.Products().GetByID(ctx, testProductID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(5)))

	list, err := store.Sales().List(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	customer, err := store.Customers().GetByID(ctx, testCustomerID)
	require.NoError(t, err)
	assert.Zero(t, customer.LoyaltyPoints)

	pending, err := store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPostSaleValidation(t *testing.T) {
	ctx := context.Background()
	_, uc := newCheckoutEnv(t, defaultSettings())

	cases := map[string]dto.CreateSaleRequest{
		"no items": {PaymentMethod: entity.PaymentMethodCash},
		"bad payment method": func() dto.CreateSaleRequest {
			in := cartRequest(1)
			in.PaymentMethod = "check"
			return in
		}(),
		"zero quantity": func() dto.CreateSaleRequest {
			in := cartRequest(1)
			in.Items[0].Quantity = decimal.Zero
			return in
		}(),
		"negative discount": func() dto.CreateSaleRequest {
			in := cartRequest(1)
			in.Items[0].Discount = decimal.NewFromInt(-1)
			return in
		}(),
		"subtotal disagrees with line totals": func() dto.CreateSaleRequest {
			in := cartRequest(2)
			in.Subtotal = decimal.NewFromInt(60)
			return in
		}(),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.PostSale(ctx, testCashierID, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// Rounding in line totals is tolerated up to a cent; anything beyond is a
// mismatched cart and nothing commits.
func TestPostSaleSubtotalMismatchRejected(t *testing.T) {
	ctx := context.Background()
	store, uc := newCheckoutEnv(t, defaultSettings())

	in := cartRequest(2)
	in.Subtotal = decimal.NewFromFloat(99.50)
	_, err := uc.PostSale(ctx, testCashierID, in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	product, err := store.Products().GetByID(ctx, testProductID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(5)), "rejected cart must not touch stock")

	within := cartRequest(2)
	within.Subtotal = decimal.NewFromFloat(100.01)
	_, err = uc.PostSale(ctx, testCashierID, within)
	require.NoError(t, err)
}

func TestPostSaleAnonymousSkipsLoyalty(t *testing.T) {
	ctx := context.Background()
	store, uc := newCheckoutEnv(t, defaultSettings())

	in := cartRequest(1)
	in.CustomerID = ""
	resp, err := uc.PostSale(ctx, testCashierID, in)
	require.NoError(t, err)
	assert.Empty(t, resp.CustomerName)

	customer, err := store.Customers().GetByID(ctx, testCustomerID)
	require.NoError(t, err)
	assert.Zero(t, customer.LoyaltyPoints)
}

func TestPostSaleFiscalDisabledQueuesNothing(t *testing.T) {
	ctx := context.Background()
	st := defaultSettings()
	st[settings.KeyFiscalEnabled] = "0"
	st[settings.KeyInvoiceAutoPrint] = "0"
	store, uc := newCheckoutEnv(t, st)

	_, err := uc.PostSale(ctx, testCashierID, cartRequest(1))
	require.NoError(t, err)

	pending, err := store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPostSaleSequentialInvoiceNumbers(t *testing.T) {
	ctx := context.Background()
	_, uc := newCheckoutEnv(t, defaultSettings())

	first, err := uc.PostSale(ctx, testCashierID, cartRequest(1))
	require.NoError(t, err)
	second, err := uc.PostSale(ctx, testCashierID, cartRequest(1))
	require.NoError(t, err)

	assert.Equal(t, "INV-001000", first.InvoiceNumber)
	assert.Equal(t, "INV-001001", second.InvoiceNumber)
}
