package repository

import (
	"context"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// CustomerRepository reads customers and moves loyalty points. AddLoyaltyPoints
// applies a signed delta atomically within the caller's transaction.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	AddLoyaltyPoints(ctx context.Context, id string, delta int64) error
}
