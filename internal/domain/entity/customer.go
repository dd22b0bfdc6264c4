package entity

import "time"

// Customer carries the loyalty balance. LoyaltyPoints is mutated by the sale
// poster (+) and refund processor (-), always inside the sale/refund transaction.
type Customer struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	LoyaltyPoints int64
	CreatedAt     time.Time
}
