package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

// SaleHandler handles checkout, refunds and sale queries (protected).
type SaleHandler struct {
	post    *sales.PostSaleUseCase
	refund  *sales.RefundSaleUseCase
	queries *sales.QueryUseCase
}

// NewSaleHandler builds the handler.
func NewSaleHandler(post *sales.PostSaleUseCase, refund *sales.RefundSaleUseCase, queries *sales.QueryUseCase) *SaleHandler {
	return &SaleHandler{post: post, refund: refund, queries: queries}
}

// Create posts a sale: decrements stock, awards loyalty points, queues fiscal
// submission and receipt printing.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	sale, err := h.post.PostSale(c.Context(), userID, in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GetByID returns one sale with its items.
// GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id required"})
	}
	sale, err := h.queries.GetSale(c.Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(sale)
}

// List returns sales filtered by date range, status and customer.
// GET /api/sales?start_date&end_date&status&customer_id
func (h *SaleHandler) List(c *fiber.Ctx) error {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid start_date"})
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid end_date"})
	}
	filter := repository.SaleFilter{
		StartDate:  start,
		EndDate:    end,
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
	}
	list, err := h.queries.ListSales(c.Context(), filter)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "sales": list})
}

// Stats returns aggregate sale numbers for a date range.
// GET /api/sales/stats/summary?start_date&end_date
func (h *SaleHandler) Stats(c *fiber.Ctx) error {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid start_date"})
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid end_date"})
	}
	stats, err := h.queries.Stats(c.Context(), start, end)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(stats)
}

// Refund reverses a completed sale: restores stock and claws back loyalty
// points. Requires admin or manager.
// POST /api/sales/:id/refund
func (h *SaleHandler) Refund(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id required"})
	}
	if err := h.refund.Refund(c.Context(), id, userID); err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "sale refunded"})
}
