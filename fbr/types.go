package fbr

import "github.com/shopspring/decimal"

// InvoicePayload is the document shape the tax authority accepts.
// Field names follow their published JSON contract.
type InvoicePayload struct {
	InvoiceType           string        `json:"InvoiceType"`
	InvoiceDate           string        `json:"InvoiceDate"`
	InvoiceRefNo          string        `json:"InvoiceRefNo"`
	SellerNTNCNIC         string        `json:"SellerNTNCNIC"`
	SellerBusinessName    string        `json:"SellerBusinessName"`
	SellerProvince        string        `json:"SellerProvince"`
	SellerAddress         string        `json:"SellerAddress"`
	BuyerNTNCNIC          string        `json:"BuyerNTNCNIC"`
	BuyerBusinessName     string        `json:"BuyerBusinessName"`
	BuyerProvince         string        `json:"BuyerProvince"`
	BuyerAddress          string        `json:"BuyerAddress"`
	BuyerRegistrationType string          `json:"BuyerRegistrationType"`
	ScenarioId            string          `json:"ScenarioId,omitempty"`
	TotalSalesValue       decimal.Decimal `json:"TotalSalesValue"`
	TotalTaxAmount        decimal.Decimal `json:"TotalTaxAmount"`
	TotalInvoiceValue     decimal.Decimal `json:"TotalInvoiceValue"`
	Items                 []ItemPayload   `json:"Items"`
}

type ItemPayload struct {
	HSCode                   string          `json:"HSCode"`
	ProductDescription       string          `json:"ProductDescription"`
	Rate                     string          `json:"Rate"`
	UoM                      string          `json:"UOM"`
	Quantity                 decimal.Decimal `json:"Quantity"`
	UnitPrice                decimal.Decimal `json:"UnitPrice"`
	TotalValue               decimal.Decimal `json:"TotalValue"`
	ValueSalesExcludingST    decimal.Decimal `json:"ValueSalesExcludingST"`
	SalesTaxApplicable       decimal.Decimal `json:"SalesTaxApplicable"`
	SalesTaxWithheldAtSource decimal.Decimal `json:"SalesTaxWithheldAtSource"`
	ExtraTax                 decimal.Decimal `json:"ExtraTax"`
	FurtherTax               decimal.Decimal `json:"FurtherTax"`
	FEDPayable               decimal.Decimal `json:"FEDPayable"`
	FixedNotifiedValue       decimal.Decimal `json:"FixedNotifiedValue"`
	Discount                 decimal.Decimal `json:"Discount"`
	SaleType                 string          `json:"SaleType"`
	SROScheduleNo            string          `json:"SROScheduleNo,omitempty"`
	SROItemSerialNo          string          `json:"SROItemSerialNo,omitempty"`
}

// SubmitResult is what PostInvoice hands back to the caller.
// RawResponse keeps the authority's verbatim reply for auditing.
type SubmitResult struct {
	Accepted      bool
	InvoiceNumber string
	StatusCode    string
	ErrorMessage  string
	RawResponse   string
}

type validationResponse struct {
	StatusCode string `json:"statusCode"`
	Status     string `json:"status"`
	Error      string `json:"error"`
}

type submitAPIResponse struct {
	InvoiceNumber      string             `json:"invoiceNumber"`
	ValidationResponse validationResponse `json:"validationResponse"`
}

type statusAPIResponse struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Status        string `json:"status"`
}

const (
	statusCodeAccepted = "00"
	statusCodeRejected = "01"
)
