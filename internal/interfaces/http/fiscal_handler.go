package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/fiscal"
)

// FiscalHandler handles fiscal status, manual retries and reports (protected).
type FiscalHandler struct {
	uc *fiscal.SubmissionUseCase
}

// NewFiscalHandler builds the handler.
func NewFiscalHandler(uc *fiscal.SubmissionUseCase) *FiscalHandler {
	return &FiscalHandler{uc: uc}
}

// Status returns the current fiscal submission state of a sale.
// GET /api/fiscal/status/:saleId
func (h *FiscalHandler) Status(c *fiber.Ctx) error {
	saleID := c.Params("saleId")
	if saleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "saleId required"})
	}
	status, err := h.uc.Status(c.Context(), saleID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(status)
}

// Retry sweeps failed submissions still below the retry bound. Requires admin
// or manager.
// POST /api/fiscal/retry
func (h *FiscalHandler) Retry(c *fiber.Ctx) error {
	if err := h.uc.RetryFailed(c.Context()); err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "retry sweep completed"})
}

// Report returns submission records plus summary counters for a date range.
// GET /api/fiscal/report?start_date&end_date
func (h *FiscalHandler) Report(c *fiber.Ctx) error {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid start_date"})
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid end_date"})
	}
	if start.IsZero() || end.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "start_date and end_date required"})
	}
	report, err := h.uc.Report(c.Context(), start, end)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(report)
}
