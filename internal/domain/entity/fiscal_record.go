package entity

import "time"

// Fiscal submission statuses. A sale accumulates records over time; the
// current status is the most recent row.
const (
	FiscalStatusNotSubmitted = "not_submitted"
	FiscalStatusSubmitted    = "submitted"
	FiscalStatusFailed       = "failed"
)

// FiscalRecord is one submission attempt against the tax authority.
type FiscalRecord struct {
	ID              string
	SaleID          string
	FiscalID        string // assigned by the authority on success
	QRCode          string
	VerificationURL string
	Signature       string
	Status          string
	ErrorMessage    string
	RetryCount      int
	SubmittedAt     time.Time
}
