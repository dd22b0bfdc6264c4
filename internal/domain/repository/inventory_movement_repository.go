package repository

import (
	"context"
	"time"

	"github.com/openretail/pos-backend/internal/domain/entity"
)

// MovementFilter narrows movement listings. Zero values mean "no filter".
type MovementFilter struct {
	ProductID string
	Type      string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// InventoryMovementRepository appends to the movement ledger. Movements are
// never updated or deleted.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, error)
	ListByReference(ctx context.Context, reference string) ([]*entity.InventoryMovement, error)
}
