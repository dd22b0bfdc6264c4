package repository

import (
	"context"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// UserRepository looks up operators (cashier_name on sale responses).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
