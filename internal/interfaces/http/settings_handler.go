package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/settings"
)

// SettingsHandler handles the key-value settings store (admin/manager).
type SettingsHandler struct {
	provider settings.Provider
}

// NewSettingsHandler builds the handler.
func NewSettingsHandler(provider settings.Provider) *SettingsHandler {
	return &SettingsHandler{provider: provider}
}

// GetAll returns the current settings snapshot.
// GET /api/settings
func (h *SettingsHandler) GetAll(c *fiber.Ctx) error {
	s, err := h.provider.Current(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(s)
}

// Set writes one setting and reloads the snapshot.
// PUT /api/settings/:key
func (h *SettingsHandler) Set(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "key required"})
	}
	var in struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if err := h.provider.Set(c.Context(), key, in.Value); err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "setting updated"})
}

// Reload re-reads the settings table into the active snapshot. Running
// instances otherwise keep serving the snapshot they booted with.
// POST /api/settings/reload
func (h *SettingsHandler) Reload(c *fiber.Ctx) error {
	s, err := h.provider.Reload(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(s)
}
