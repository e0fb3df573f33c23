package models

// InvoiceStatus tracks an invoice through its lifecycle.
// Draft invoices are editable; once submitted they are frozen.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSubmitted InvoiceStatus = "submitted"
	InvoiceStatusPosted    InvoiceStatus = "posted"
	InvoiceStatusError     InvoiceStatus = "error"
)

type InvoiceType string

const (
	InvoiceTypeSaleInvoice InvoiceType = "Sale Invoice"
	InvoiceTypeDebitNote   InvoiceType = "Debit Note"
)

// RegistrationType is the buyer's sales-tax registration status.
type RegistrationType string

const (
	RegistrationTypeRegistered   RegistrationType = "Registered"
	RegistrationTypeUnregistered RegistrationType = "Unregistered"
)

// SaleType follows the tax authority's sale classifications.
// Exempt sales carry no tax regardless of the configured rates.
type SaleType string

const (
	SaleTypeStandard SaleType = "Goods at standard rate (default)"
	SaleTypeReduced  SaleType = "Goods at Reduced Rate"
	SaleTypeExempt   SaleType = "Exempt Goods"
	SaleTypeZero     SaleType = "Goods at zero-rate"
	SaleTypeServices SaleType = "Services"
)

func (s SaleType) IsExempt() bool {
	return s == SaleTypeExempt || s == SaleTypeZero
}
