package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxfocuspk/invoicing_backend/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func sampleInvoice() (*models.Invoice, *models.Company) {
	company := &models.Company{
		Name:    "Acme Pvt Ltd",
		NTNCNIC: "1234567",
		Address: "12 Mall Road, Lahore",
	}
	invoice := &models.Invoice{
		InvoiceRefNo:      "INV-100",
		InvoiceType:       models.InvoiceTypeSaleInvoice,
		InvoiceDate:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CurrentStatus:     models.InvoiceStatusDraft,
		BuyerBusinessName: "Buyer & Co",
		BuyerNTNCNIC:      "7654321",
		BuyerAddress:      "Karachi",
		Notes:             "Payment due within 30 days.",
		Items: []models.InvoiceItem{
			{
				HSCode:             "8471.3010",
				ProductDescription: "Laptop",
				Quantity:           d("2"),
				UnitPrice:          d("1000"),
				TaxRate:            d("18"),
				SaleType:           models.SaleTypeStandard,
			},
		},
		TotalSalesValue:   d("2000"),
		TotalTaxAmount:    d("360"),
		TotalInvoiceValue: d("2360"),
	}
	models.CalculateInvoiceItemAmounts(&invoice.Items[0])
	return invoice, company
}

func TestRenderInvoice(t *testing.T) {
	invoice, company := sampleInvoice()

	data, err := RenderInvoice(invoice, company)
	if err != nil {
		t.Fatalf("RenderInvoice error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty pdf output")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected %%PDF header, got %q", data[:8])
	}
}

func TestRenderInvoice_WithFBRReference(t *testing.T) {
	invoice, company := sampleInvoice()
	invoice.CurrentStatus = models.InvoiceStatusSubmitted
	invoice.FBRReference = "FBR-INV-100"

	data, err := RenderInvoice(invoice, company)
	if err != nil {
		t.Fatalf("RenderInvoice error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty pdf output")
	}
}
