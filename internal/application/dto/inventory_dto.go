package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockInRequest adds quantity to a product (purchase receipt, return to stock).
type StockInRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// AdjustStockRequest sets the absolute stock level; the ledger records the
// signed delta against the current quantity.
type AdjustStockRequest struct {
	ProductID   string          `json:"product_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Notes       string          `json:"notes"`
}

// MovementResponse one ledger entry.
type MovementResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Delta     decimal.Decimal `json:"delta"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// InventorySummaryResponse aggregate over active products.
type InventorySummaryResponse struct {
	TotalProducts   int64           `json:"total_products"`
	TotalItems      decimal.Decimal `json:"total_items"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
}
