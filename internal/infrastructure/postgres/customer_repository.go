package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implements CustomerRepository over PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository builds the adapter. Pass pool or tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID fetches a customer.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var c entity.Customer
	var email, phone *string
	err := r.q.QueryRow(ctx,
		`SELECT id, name, email, phone, loyalty_points, created_at FROM customers WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &email, &phone, &c.LoyaltyPoints, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	c.Email = deref(email)
	c.Phone = deref(phone)
	return &c, nil
}

// AddLoyaltyPoints applies a signed delta to the loyalty balance atomically.
func (r *CustomerRepo) AddLoyaltyPoints(ctx context.Context, id string, delta int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE customers SET loyalty_points = loyalty_points + $2 WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("add loyalty points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add loyalty points: customer %s not found", id)
	}
	return nil
}
