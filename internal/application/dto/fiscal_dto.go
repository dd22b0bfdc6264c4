package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalInvoiceItem one payload line; tax_rate comes from settings.
type FiscalInvoiceItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Total     decimal.Decimal `json:"total"`
}

// FiscalInvoice is the JSON payload POSTed to the tax authority.
type FiscalInvoice struct {
	InvoiceNumber         string              `json:"invoice_number"`
	Date                  string              `json:"date"` // RFC3339
	CompanyID             string              `json:"company_id"`
	DeviceID              string              `json:"device_id"`
	Items                 []FiscalInvoiceItem `json:"items"`
	Subtotal              decimal.Decimal     `json:"subtotal"`
	Tax                   decimal.Decimal     `json:"tax"`
	Total                 decimal.Decimal     `json:"total"`
	PaymentMethod         string              `json:"payment_method"`
	TaxRegistrationNumber string              `json:"tax_registration_number"`
	VATNumber             string              `json:"vat_number"`
	Signature             string              `json:"signature,omitempty"`
}

// AuthorityResponse is what the authority answers: {success, fiscal_id,
// qr_code, verification_url} or {success:false, message}.
type AuthorityResponse struct {
	Success         bool   `json:"success"`
	FiscalID        string `json:"fiscal_id"`
	QRCode          string `json:"qr_code"`
	VerificationURL string `json:"verification_url"`
	Message         string `json:"message"`
}

// FiscalStatusResponse current submission state of a sale for manual
// inspection and retry triggering.
type FiscalStatusResponse struct {
	SaleID       string `json:"sale_id"`
	Status       string `json:"status"`
	FiscalID     string `json:"fiscal_id,omitempty"`
	RetryCount   int    `json:"retry_count"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// FiscalReportRecord one row of the fiscal report.
type FiscalReportRecord struct {
	SaleID      string    `json:"sale_id"`
	Status      string    `json:"status"`
	FiscalID    string    `json:"fiscal_id,omitempty"`
	RetryCount  int       `json:"retry_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// FiscalReportSummary counters over the reported period.
type FiscalReportSummary struct {
	TotalRecords int `json:"total_records"`
	Submitted    int `json:"submitted"`
	Failed       int `json:"failed"`
	PendingRetry int `json:"pending_retry"`
}

// FiscalReportResponse fiscal report over a date range.
type FiscalReportResponse struct {
	Records []FiscalReportRecord `json:"records"`
	Summary FiscalReportSummary  `json:"summary"`
}
