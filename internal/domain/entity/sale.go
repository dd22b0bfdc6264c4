package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale statuses.
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusRefunded  = "refunded"
	SaleStatusCancelled = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodMobile = "mobile"
	PaymentMethodOther  = "other"
)

// ValidPaymentMethod reports whether m is one of the accepted payment methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodOther:
		return true
	}
	return false
}

// Sale is the header of a checkout transaction. Created once by the sale poster;
// status transitions only via the refund processor (completed -> refunded).
type Sale struct {
	ID            string
	CustomerID    string // empty when the sale is anonymous
	UserID        string // cashier
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Status        string
	InvoiceNumber string // dedicated column, assigned post-commit
	Notes         string
	CreatedAt     time.Time
}

// SaleItem is one line of a sale. ProductName is a snapshot taken at sale time
// and stays unchanged even if the product is later renamed.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}
