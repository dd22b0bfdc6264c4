package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

// InventoryHandler handles stock movements and summaries (protected).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler builds the handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// StockIn adds quantity to a product (purchase receipt, return to stock).
// POST /api/inventory/stock-in
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	movement, err := h.ledger.StockIn(c.Context(), userID, in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(movement))
}

// Adjust sets the absolute stock level; the ledger records the signed delta.
// Requires admin or manager.
// POST /api/inventory/adjust
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	movement, err := h.ledger.Adjust(c.Context(), userID, in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(movement))
}

// Movements lists ledger entries, newest first.
// GET /api/inventory/movements?product_id&type&start_date&end_date&limit
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid start_date"})
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid end_date"})
	}
	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      c.Query("type"),
		StartDate: start,
		EndDate:   end,
		Limit:     c.QueryInt("limit"),
	}
	movements, err := h.ledger.Movements(c.Context(), filter)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Summary returns aggregate stock numbers over active products.
// GET /api/inventory/summary
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.ledger.Summary(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.InventorySummaryResponse{
		TotalProducts:   summary.TotalProducts,
		TotalItems:      summary.TotalItems,
		TotalValue:      summary.TotalValue,
		LowStockCount:   summary.LowStockCount,
		OutOfStockCount: summary.OutOfStockCount,
	})
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Delta:     m.Delta,
		Reference: m.Reference,
		Notes:     m.Notes,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}
