package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement types.
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
)

// InventoryMovement is one append-only entry of the stock ledger. Rows are
// immutable once written; corrections are new movements, never edits.
//
// Quantity is the magnitude of the change. Delta is the signed stock change
// (negative for out), so direction never has to be inferred from Type plus
// external context.
type InventoryMovement struct {
	ID        string
	ProductID string
	Type      string
	Quantity  decimal.Decimal
	Delta     decimal.Decimal
	Reference string
	Notes     string
	UserID    string
	CreatedAt time.Time
}
