package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implements SaleRepository over PostgreSQL (usable with pool or tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository builds the adapter. Pass pool or tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persists the sale header.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, customer_id, user_id, subtotal, tax, discount, total,
		                   payment_method, status, invoice_number, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, nullIfEmpty(sale.CustomerID), sale.UserID,
		sale.Subtotal, sale.Tax, sale.Discount, sale.Total,
		sale.PaymentMethod, sale.Status, nullIfEmpty(sale.InvoiceNumber),
		nullIfEmpty(sale.Notes), sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem persists one sale line.
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, discount, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SaleID, item.ProductID, item.ProductName,
		item.Quantity, item.UnitPrice, item.Discount, item.Total,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

const saleColumns = `id, customer_id, user_id, subtotal, tax, discount, total,
       payment_method, status, invoice_number, notes, created_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, invoiceNumber, notes *string
	err := row.Scan(
		&s.ID, &customerID, &s.UserID, &s.Subtotal, &s.Tax, &s.Discount, &s.Total,
		&s.PaymentMethod, &s.Status, &invoiceNumber, &notes, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CustomerID = deref(customerID)
	s.InvoiceNumber = deref(invoiceNumber)
	s.Notes = deref(notes)
	return &s, nil
}

// GetByID fetches a sale header.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

// GetItems fetches all lines of a sale.
func (r *SaleRepo) GetItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, discount, total
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Discount, &it.Total); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List fetches sale headers with optional filters, newest first.
func (r *SaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []any{}
	n := 0
	add := func(cond string, v any) {
		n++
		query += fmt.Sprintf(" AND "+cond, n)
		args = append(args, v)
	}
	if !filter.StartDate.IsZero() {
		add("created_at >= $%d", filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		add("created_at <= $%d", filter.EndDate)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, sale)
	}
	return list, rows.Err()
}

// MarkRefunded flips a sale to refunded. The status guard is part of the
// UPDATE so two concurrent refunds inside their own transactions cannot both
// commit; the loser sees zero rows affected.
func (r *SaleRepo) MarkRefunded(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE sales SET status = $2 WHERE id = $1 AND status <> $2`,
		id, entity.SaleStatusRefunded)
	if err != nil {
		return fmt.Errorf("mark sale refunded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyRefunded
	}
	return nil
}

// SetInvoiceNumber stores the assigned invoice number (dedicated column).
func (r *SaleRepo) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error {
	_, err := r.q.Exec(ctx, `UPDATE sales SET invoice_number = $2 WHERE id = $1`, id, invoiceNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("set invoice number: %w", err)
	}
	return nil
}

// Stats aggregates sales over [start, end].
func (r *SaleRepo) Stats(ctx context.Context, start, end time.Time) (*repository.SaleStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(total) FILTER (WHERE status = 'completed'), 0),
		       COALESCE(AVG(total) FILTER (WHERE status = 'completed'), 0),
		       COUNT(*) FILTER (WHERE status = 'refunded')
		FROM sales WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)`
	var startArg, endArg *time.Time
	if !start.IsZero() {
		startArg = &start
	}
	if !end.IsZero() {
		endArg = &end
	}
	var s repository.SaleStats
	err := r.q.QueryRow(ctx, query, startArg, endArg).Scan(
		&s.TotalSales, &s.TotalRevenue, &s.AverageSale, &s.RefundedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("sale stats: %w", err)
	}
	return &s, nil
}
