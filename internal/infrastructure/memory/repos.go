package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

type productRepo struct{ s *Store }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) UpdateStock(_ context.Context, id string, quantity decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("update stock: product %s not found", id)
	}
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	return nil
}

func (r *productRepo) StockSummary(_ context.Context) (*repository.StockSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var s repository.StockSummary
	s.TotalItems = decimal.Zero
	s.TotalValue = decimal.Zero
	for _, p := range r.s.products {
		if !p.IsActive {
			continue
		}
		s.TotalProducts++
		s.TotalItems = s.TotalItems.Add(p.StockQuantity)
		s.TotalValue = s.TotalValue.Add(p.StockQuantity.Mul(p.Cost))
		if p.StockQuantity.LessThanOrEqual(p.MinStockLevel) {
			s.LowStockCount++
		}
		if p.StockQuantity.IsZero() {
			s.OutOfStockCount++
		}
	}
	return &s, nil
}

type saleRepo struct{ s *Store }

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sale
	r.s.sales[sale.ID] = &cp
	return nil
}

func (r *saleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *item
	r.s.saleItems[item.SaleID] = append(r.s.saleItems[item.SaleID], &cp)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	return &cp, nil
}

func (r *saleRepo) GetItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return cloneSlice(r.s.saleItems[saleID]), nil
}

func (r *saleRepo) List(_ context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Sale
	for _, sale := range r.s.sales {
		if !filter.StartDate.IsZero() && sale.CreatedAt.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && sale.CreatedAt.After(filter.EndDate) {
			continue
		}
		if filter.Status != "" && sale.Status != filter.Status {
			continue
		}
		if filter.CustomerID != "" && sale.CustomerID != filter.CustomerID {
			continue
		}
		cp := *sale
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *saleRepo) MarkRefunded(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok || sale.Status == entity.SaleStatusRefunded {
		return domain.ErrAlreadyRefunded
	}
	sale.Status = entity.SaleStatusRefunded
	return nil
}

func (r *saleRepo) SetInvoiceNumber(_ context.Context, id, invoiceNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return fmt.Errorf("set invoice number: sale %s not found", id)
	}
	sale.InvoiceNumber = invoiceNumber
	return nil
}

func (r *saleRepo) Stats(_ context.Context, start, end time.Time) (*repository.SaleStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &repository.SaleStats{TotalRevenue: decimal.Zero, AverageSale: decimal.Zero}
	completed := int64(0)
	for _, sale := range r.s.sales {
		if !start.IsZero() && sale.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && sale.CreatedAt.After(end) {
			continue
		}
		stats.TotalSales++
		switch sale.Status {
		case entity.SaleStatusCompleted:
			completed++
			stats.TotalRevenue = stats.TotalRevenue.Add(sale.Total)
		case entity.SaleStatusRefunded:
			stats.RefundedCount++
		}
	}
	if completed > 0 {
		stats.AverageSale = stats.TotalRevenue.Div(decimal.NewFromInt(completed))
	}
	return stats, nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *movementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if !filter.StartDate.IsZero() && m.CreatedAt.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && m.CreatedAt.After(filter.EndDate) {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (r *movementRepo) ListByReference(_ context.Context, reference string) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.Reference == reference {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}

type customerRepo struct{ s *Store }

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *customerRepo) AddLoyaltyPoints(_ context.Context, id string, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return fmt.Errorf("add loyalty points: customer %s not found", id)
	}
	c.LoyaltyPoints += delta
	return nil
}

type fiscalRecordRepo struct{ s *Store }

func (r *fiscalRecordRepo) Create(_ context.Context, rec *entity.FiscalRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	r.s.fiscalRecords = append(r.s.fiscalRecords, &cp)
	return nil
}

func (r *fiscalRecordRepo) GetLatestBySaleID(_ context.Context, saleID string) (*entity.FiscalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.FiscalRecord
	for _, rec := range r.s.fiscalRecords {
		if rec.SaleID != saleID {
			continue
		}
		if latest == nil || rec.SubmittedAt.After(latest.SubmittedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fiscalRecordRepo) ListFailed(_ context.Context, maxRetries int) ([]*entity.FiscalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.FiscalRecord
	for _, rec := range r.s.fiscalRecords {
		if rec.Status == entity.FiscalStatusFailed && rec.RetryCount < maxRetries {
			cp := *rec
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *fiscalRecordRepo) ListByPeriod(_ context.Context, start, end time.Time) ([]*entity.FiscalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.FiscalRecord
	for _, rec := range r.s.fiscalRecords {
		sale, ok := r.s.sales[rec.SaleID]
		if !ok || sale.CreatedAt.Before(start) || sale.CreatedAt.After(end) {
			continue
		}
		cp := *rec
		list = append(list, &cp)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SubmittedAt.Before(list[j].SubmittedAt) })
	return list, nil
}

func (r *fiscalRecordRepo) MarkSubmitted(_ context.Context, id, fiscalID, qrCode, verificationURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.fiscalRecords {
		if rec.ID == id {
			rec.Status = entity.FiscalStatusSubmitted
			rec.FiscalID = fiscalID
			rec.QRCode = qrCode
			rec.VerificationURL = verificationURL
			rec.ErrorMessage = ""
			rec.SubmittedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("mark fiscal record submitted: record %s not found", id)
}

func (r *fiscalRecordRepo) MarkFailed(_ context.Context, id, errorMessage string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.fiscalRecords {
		if rec.ID == id {
			rec.Status = entity.FiscalStatusFailed
			rec.ErrorMessage = errorMessage
			rec.RetryCount++
			rec.SubmittedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("mark fiscal record failed: record %s not found", id)
}

type counterRepo struct{ s *Store }

func (r *counterRepo) Next(_ context.Context, prefix string, start int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if last, ok := r.s.counters[prefix]; ok {
		r.s.counters[prefix] = last + 1
		return last + 1, nil
	}
	r.s.counters[prefix] = start
	return start, nil
}

type settingsRepo struct{ s *Store }

func (r *settingsRepo) GetAll(_ context.Context) (map[string]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return cloneFlatMap(r.s.settings), nil
}

func (r *settingsRepo) Set(_ context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[key] = value
	return nil
}

type outboxRepo struct{ s *Store }

func (r *outboxRepo) Create(_ context.Context, entry *entity.OutboxEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.outbox = append(r.s.outbox, &cp)
	return nil
}

func (r *outboxRepo) ListPending(_ context.Context, limit int) ([]*entity.OutboxEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.OutboxEntry
	for _, e := range r.s.outbox {
		if e.Status != entity.OutboxStatusPending {
			continue
		}
		cp := *e
		list = append(list, &cp)
		if limit > 0 && len(list) >= limit {
			break
		}
	}
	return list, nil
}

func (r *outboxRepo) MarkDone(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.outbox {
		if e.ID == id {
			e.Status = entity.OutboxStatusDone
			e.ProcessedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("mark outbox entry done: entry %s not found", id)
}

func (r *outboxRepo) MarkFailed(_ context.Context, id, lastError string, maxAttempts int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.outbox {
		if e.ID == id {
			e.Attempts++
			e.LastError = lastError
			if e.Attempts >= maxAttempts {
				e.Status = entity.OutboxStatusFailed
			}
			e.ProcessedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("mark outbox entry failed: entry %s not found", id)
}

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
