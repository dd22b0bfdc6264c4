package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/application/numbering"
	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/infrastructure/memory"
	apphttp "github.com/openretail/pos-backend/internal/interfaces/http"
	"github.com/openretail/pos-backend/pkg/logger"
)

const handlerProductID = "11111111-1111-1111-1111-111111111111"

// buildAPI wires the full router over the in-memory store.
func buildAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(&entity.Product{
		ID:            handlerProductID,
		Name:          "Coffee Beans 1kg",
		SKU:           "COF-001",
		Price:         decimal.NewFromInt(50),
		StockQuantity: decimal.NewFromInt(5),
		IsActive:      true,
	})
	store.AddUser(&entity.User{ID: testUserID, Username: "cashier1", FullName: "Luis Perez", Role: entity.RoleCashier})

	log := logger.New(logger.Config{Env: "production", Level: "error"})
	provider := settings.Static{S: settings.Settings{}}
	ledger := inventory.NewLedgerUseCase(store, store.Movements(), store.Products())
	issuer := numbering.NewIssuer(store.Counters(), provider)
	postUC := sales.NewPostSaleUseCase(store, ledger, issuer, provider,
		store.Sales(), store.Customers(), store.Users(), sales.NoopWaker{}, log)
	refundUC := sales.NewRefundSaleUseCase(store, ledger, store.Sales(), log)
	queryUC := sales.NewQueryUseCase(store.Sales(), store.Customers(), store.Users())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		PostSale:   postUC,
		RefundSale: refundUC,
		SaleQuery:  queryUC,
		Ledger:     ledger,
		Settings:   provider,
		JWTSecret:  testJWTSecret,
	})
	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func saleBody(quantity int64) dto.CreateSaleRequest {
	qty := decimal.NewFromInt(quantity)
	total := qty.Mul(decimal.NewFromInt(50))
	return dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{
			ProductID:   handlerProductID,
			ProductName: "Coffee Beans 1kg",
			Quantity:    qty,
			UnitPrice:   decimal.NewFromInt(50),
			Total:       total,
		}},
		Subtotal:      total,
		Total:         total,
		PaymentMethod: entity.PaymentMethodCash,
	}
}

func TestCreateSaleEndpoint(t *testing.T) {
	app, store := buildAPI(t)
	token := tokenForRole(t, entity.RoleCashier)

	resp, body := postJSON(t, app, "/api/sales/", token, saleBody(2))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.SaleStatusCompleted, body["status"])
	assert.NotEmpty(t, body["invoice_number"])

	product, err := store.Products().GetByID(context.Background(), handlerProductID)
	require.NoError(t, err)
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(3)))
}

func TestCreateSaleOversellConflict(t *testing.T) {
	app, _ := buildAPI(t)
	token := tokenForRole(t, entity.RoleCashier)

	resp, body := postJSON(t, app, "/api/sales/", token, saleBody(10))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestCreateSaleRequiresToken(t *testing.T) {
	app, _ := buildAPI(t)
	raw, _ := json.Marshal(saleBody(1))
	req := httptest.NewRequest(http.MethodPost, "/api/sales/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefundRequiresBackofficeRole(t *testing.T) {
	app, _ := buildAPI(t)
	cashier := tokenForRole(t, entity.RoleCashier)

	resp, body := postJSON(t, app, "/api/sales/", cashier, saleBody(1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saleID := body["id"].(string)

	resp, _ = postJSON(t, app, "/api/sales/"+saleID+"/refund", cashier, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	manager := tokenForRole(t, entity.RoleManager)
	resp, _ = postJSON(t, app, "/api/sales/"+saleID+"/refund", manager, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
