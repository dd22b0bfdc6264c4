package settings

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Settings is a snapshot of the key-value settings store. Values are raw
// strings as stored; the typed getters apply the defaults the POS expects.
type Settings map[string]string

// Keys used by the sale-posting and fiscal core.
const (
	KeyFiscalEnabled         = "fiscal_enabled"
	KeyFiscalAPIEndpoint     = "fiscal_api_endpoint"
	KeyFiscalCompanyID       = "fiscal_company_id"
	KeyFiscalDeviceID        = "fiscal_device_id"
	KeyFiscalCertPath        = "fiscal_certificate_path"
	KeyFiscalCertPassword    = "fiscal_certificate_password"
	KeyFiscalRetryAttempts   = "fiscal_retry_attempts"
	KeyTaxRate               = "tax_rate"
	KeyTaxRegistrationNumber = "tax_registration_number"
	KeyVATNumber             = "vat_number"
	KeyInvoicePrefix         = "invoice_numbering_prefix"
	KeyInvoiceStart          = "invoice_numbering_start"
	KeyInvoiceAutoPrint      = "invoice_auto_print"
)

func (s Settings) get(key, def string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return def
}

// FiscalEnabled reports whether sales are reported to the tax authority.
func (s Settings) FiscalEnabled() bool { return s[KeyFiscalEnabled] == "1" }

// FiscalAPIEndpoint is the authority's HTTPS endpoint. Empty means unconfigured.
func (s Settings) FiscalAPIEndpoint() string { return s[KeyFiscalAPIEndpoint] }

func (s Settings) FiscalCompanyID() string    { return s[KeyFiscalCompanyID] }
func (s Settings) FiscalDeviceID() string     { return s[KeyFiscalDeviceID] }
func (s Settings) FiscalCertPath() string     { return s[KeyFiscalCertPath] }
func (s Settings) FiscalCertPassword() string { return s[KeyFiscalCertPassword] }

// FiscalRetryAttempts is the retry bound for failed submissions.
func (s Settings) FiscalRetryAttempts() int {
	n, err := strconv.Atoi(s.get(KeyFiscalRetryAttempts, "3"))
	if err != nil || n < 0 {
		return 3
	}
	return n
}

// TaxRate is the configured tax rate applied to fiscal payload lines.
func (s Settings) TaxRate() decimal.Decimal {
	d, err := decimal.NewFromString(s.get(KeyTaxRate, "0"))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (s Settings) TaxRegistrationNumber() string { return s[KeyTaxRegistrationNumber] }
func (s Settings) VATNumber() string             { return s[KeyVATNumber] }

// InvoicePrefix is the invoice number prefix.
func (s Settings) InvoicePrefix() string { return s.get(KeyInvoicePrefix, "INV-") }

// InvoiceStart seeds the invoice counter; the first number issued equals it.
func (s Settings) InvoiceStart() int64 {
	n, err := strconv.ParseInt(s.get(KeyInvoiceStart, "1000"), 10, 64)
	if err != nil || n < 0 {
		return 1000
	}
	return n
}

// AutoPrint reports whether a receipt print is triggered after each sale.
func (s Settings) AutoPrint() bool { return s[KeyInvoiceAutoPrint] == "1" }
