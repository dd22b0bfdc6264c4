package entity

import "time"

// Outbox kinds and statuses. An intent row is written in the same transaction
// as the sale and processed later by the dispatcher worker (at-least-once).
const (
	OutboxKindFiscalSubmit = "fiscal_submit"
	OutboxKindPrintReceipt = "print_receipt"

	OutboxStatusPending = "pending"
	OutboxStatusDone    = "done"
	OutboxStatusFailed  = "failed"
)

// OutboxEntry is a durable intent to run a post-commit side effect for a sale.
type OutboxEntry struct {
	ID          string
	SaleID      string
	Kind        string
	Status      string
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt time.Time
}
