package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item. StockQuantity is a denormalized cache kept
// transactionally consistent with the movement ledger; it is mutated by the
// inventory ledger only and never goes negative.
type Product struct {
	ID            string
	Name          string
	SKU           string
	Price         decimal.Decimal
	Cost          decimal.Decimal
	StockQuantity decimal.Decimal
	MinStockLevel decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
