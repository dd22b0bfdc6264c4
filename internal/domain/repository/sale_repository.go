package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// SaleFilter narrows sale listings. Zero values mean "no filter".
type SaleFilter struct {
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	CustomerID string
}

// SaleStats is the aggregate for the stats summary endpoint.
type SaleStats struct {
	TotalSales    int64
	TotalRevenue  decimal.Decimal
	AverageSale   decimal.Decimal
	RefundedCount int64
}

// SaleRepository persists sale headers and line items.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	MarkRefunded(ctx context.Context, id string) error
	SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error
	Stats(ctx context.Context, start, end time.Time) (*SaleStats, error)
}
