package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implements ProductRepository over PostgreSQL (usable with pool or tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository builds the adapter. Pass pool or tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, sku, price, cost, stock_quantity, min_stock_level, is_active, created_at, updated_at`

// GetByID fetches a product without locking.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate fetches the product and locks its row (SELECT FOR UPDATE) so
// concurrent stock mutations on the same product serialize.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, id, true)
}

func (r *ProductRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.SKU, &p.Price, &p.Cost, &p.StockQuantity,
		&p.MinStockLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// UpdateStock replaces the stock-quantity cache for the product.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock_quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: product %s not found", id)
	}
	return nil
}

// StockSummary aggregates stock over active products.
func (r *ProductRepo) StockSummary(ctx context.Context) (*repository.StockSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(stock_quantity), 0),
		       COALESCE(SUM(stock_quantity * cost), 0),
		       COUNT(*) FILTER (WHERE stock_quantity <= min_stock_level),
		       COUNT(*) FILTER (WHERE stock_quantity = 0)
		FROM products WHERE is_active`
	var s repository.StockSummary
	err := r.q.QueryRow(ctx, query).Scan(
		&s.TotalProducts, &s.TotalItems, &s.TotalValue, &s.LowStockCount, &s.OutOfStockCount,
	)
	if err != nil {
		return nil, fmt.Errorf("stock summary: %w", err)
	}
	return &s, nil
}
