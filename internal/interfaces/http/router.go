package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openretail/pos-backend/internal/application/fiscal"
	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/domain/entity"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	PostSale   *sales.PostSaleUseCase
	RefundSale *sales.RefundSaleUseCase
	SaleQuery  *sales.QueryUseCase
	Ledger     *inventory.LedgerUseCase
	Fiscal     *fiscal.SubmissionUseCase
	Settings   settings.Provider
	JWTSecret  string
}

// Router registers the API routes. Everything requires a Bearer token;
// refunds, adjustments, fiscal retries and settings writes additionally
// require admin or manager.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	backoffice := RequireRole(entity.RoleAdmin, entity.RoleManager)

	// Sales
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.PostSale, deps.RefundSale, deps.SaleQuery)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/stats/summary", saleHandler.Stats)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/refund", backoffice, saleHandler.Refund)

	// Inventory
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup.Post("/stock-in", inventoryHandler.StockIn)
	invGroup.Post("/adjust", backoffice, inventoryHandler.Adjust)
	invGroup.Get("/movements", inventoryHandler.Movements)
	invGroup.Get("/summary", inventoryHandler.Summary)

	// Fiscal
	fiscalGroup := api.Group("/fiscal")
	fiscalHandler := NewFiscalHandler(deps.Fiscal)
	fiscalGroup.Get("/status/:saleId", fiscalHandler.Status)
	fiscalGroup.Post("/retry", backoffice, fiscalHandler.Retry)
	fiscalGroup.Get("/report", backoffice, fiscalHandler.Report)

	// Settings
	settingsGroup := api.Group("/settings", backoffice)
	settingsHandler := NewSettingsHandler(deps.Settings)
	settingsGroup.Get("/", settingsHandler.GetAll)
	settingsGroup.Put("/:key", settingsHandler.Set)
	settingsGroup.Post("/reload", settingsHandler.Reload)
}
