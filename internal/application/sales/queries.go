package sales

import (
	"context"
	"time"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

// QueryUseCase read-side of the sales API: listings, single-sale aggregate and
// the stats summary.
type QueryUseCase struct {
	sales     repository.SaleRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
}

// NewQueryUseCase builds the use case.
func NewQueryUseCase(sales repository.SaleRepository, customers repository.CustomerRepository, users repository.UserRepository) *QueryUseCase {
	return &QueryUseCase{sales: sales, customers: customers, users: users}
}

// GetSale returns the full sale aggregate with items and display names.
func (uc *QueryUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.sales.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.aggregate(ctx, sale, items), nil
}

// ListSales lists sale headers with optional date/status/customer filters.
func (uc *QueryUseCase) ListSales(ctx context.Context, filter repository.SaleFilter) ([]*dto.SaleResponse, error) {
	list, err := uc.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(list))
	for _, sale := range list {
		out = append(out, uc.aggregate(ctx, sale, nil))
	}
	return out, nil
}

// Stats returns the sales summary over [start, end].
func (uc *QueryUseCase) Stats(ctx context.Context, start, end time.Time) (*dto.SaleStatsResponse, error) {
	stats, err := uc.sales.Stats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.SaleStatsResponse{
		TotalSales:    stats.TotalSales,
		TotalRevenue:  stats.TotalRevenue,
		AverageSale:   stats.AverageSale,
		RefundedCount: stats.RefundedCount,
	}, nil
}

func (uc *QueryUseCase) aggregate(ctx context.Context, sale *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		CustomerID:    sale.CustomerID,
		UserID:        sale.UserID,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Discount:      sale.Discount,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		InvoiceNumber: sale.InvoiceNumber,
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt,
		Items:         make([]dto.SaleItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			Total:       item.Total,
		})
	}
	if sale.CustomerID != "" {
		if customer, err := uc.customers.GetByID(ctx, sale.CustomerID); err == nil && customer != nil {
			resp.CustomerName = customer.Name
		}
	}
	if user, err := uc.users.GetByID(ctx, sale.UserID); err == nil && user != nil {
		resp.CashierName = user.FullName
	}
	return resp
}
