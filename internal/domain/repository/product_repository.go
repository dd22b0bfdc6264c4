package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// ProductRepository reads products and mutates the stock-quantity cache.
// GetForUpdate must lock the product row (SELECT ... FOR UPDATE) so concurrent
// sales touching the same product serialize on it.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, id string, quantity decimal.Decimal) error

	// StockSummary backs the inventory summary endpoint.
	StockSummary(ctx context.Context) (*StockSummary, error)
}

// StockSummary is the aggregate over active products.
type StockSummary struct {
	TotalProducts   int64
	TotalItems      decimal.Decimal
	TotalValue      decimal.Decimal
	LowStockCount   int64
	OutOfStockCount int64
}
