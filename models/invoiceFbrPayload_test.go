package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestBuildFBRPayload(t *testing.T) {
	invoiceDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	invoice := Invoice{
		InvoiceRefNo:          "INV-100",
		InvoiceType:           InvoiceTypeSaleInvoice,
		InvoiceDate:           invoiceDate,
		ScenarioId:            "SN001",
		SellerNTNCNIC:         "1234567",
		SellerBusinessName:    "Acme Pvt Ltd",
		SellerProvince:        "Punjab",
		SellerAddress:         "Lahore",
		BuyerNTNCNIC:          "7654321",
		BuyerBusinessName:     "Buyer & Co",
		BuyerProvince:         "Sindh",
		BuyerAddress:          "Karachi",
		BuyerRegistrationType: RegistrationTypeRegistered,
		Items: []InvoiceItem{
			{
				HSCode:             "8471.3010",
				ProductDescription: "Laptop",
				UoM:                "PCS",
				Quantity:           d("2"),
				UnitPrice:          d("1000"),
				TaxRate:            d("18"),
				FixedNotifiedValue: d("950"),
				SaleType:           SaleTypeStandard,
			},
		},
	}
	CalculateInvoiceItemAmounts(&invoice.Items[0])
	totals := CalculateInvoiceTotals(invoice.Items)
	invoice.TotalSalesValue = totals.TotalSalesValue
	invoice.TotalTaxAmount = totals.TotalTaxAmount
	invoice.TotalInvoiceValue = totals.TotalInvoiceValue

	payload := BuildFBRPayload(&invoice)

	if payload.InvoiceRefNo != "INV-100" {
		t.Fatalf("expected ref no INV-100, got %s", payload.InvoiceRefNo)
	}
	if payload.InvoiceDate != "2026-03-10" {
		t.Fatalf("expected date 2026-03-10, got %s", payload.InvoiceDate)
	}
	if payload.SellerNTNCNIC != "1234567" || payload.BuyerNTNCNIC != "7654321" {
		t.Fatalf("seller/buyer NTN mismatch: %s / %s", payload.SellerNTNCNIC, payload.BuyerNTNCNIC)
	}
	if payload.BuyerRegistrationType != string(RegistrationTypeRegistered) {
		t.Fatalf("expected registered buyer, got %s", payload.BuyerRegistrationType)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(payload.Items))
	}
	item := payload.Items[0]
	if item.HSCode != "8471.3010" {
		t.Fatalf("expected hs code 8471.3010, got %s", item.HSCode)
	}
	if item.Rate != "18%" {
		t.Fatalf("expected rate 18%%, got %s", item.Rate)
	}
	if item.ValueSalesExcludingST.String() != "2000" {
		t.Fatalf("expected excl 2000, got %s", item.ValueSalesExcludingST)
	}
	if item.SalesTaxApplicable.String() != "360" {
		t.Fatalf("expected tax 360, got %s", item.SalesTaxApplicable)
	}
	if item.TotalValue.String() != "2360" {
		t.Fatalf("expected total 2360, got %s", item.TotalValue)
	}
	if item.UnitPrice.String() != "1000" {
		t.Fatalf("expected unit price 1000, got %s", item.UnitPrice)
	}
	if item.FixedNotifiedValue.String() != "950" {
		t.Fatalf("expected fixed notified value 950, got %s", item.FixedNotifiedValue)
	}
	if payload.TotalSalesValue.String() != "2000" {
		t.Fatalf("expected header sales value 2000, got %s", payload.TotalSalesValue)
	}
	if payload.TotalTaxAmount.String() != "360" {
		t.Fatalf("expected header tax 360, got %s", payload.TotalTaxAmount)
	}
	if payload.TotalInvoiceValue.String() != "2360" {
		t.Fatalf("expected header total 2360, got %s", payload.TotalInvoiceValue)
	}
}

// The serialized document must carry every field name the authority's
// JSON contract lists, headers and items both.
func TestBuildFBRPayload_JSONFieldNames(t *testing.T) {
	invoice := Invoice{
		InvoiceRefNo: "INV-200",
		InvoiceType:  InvoiceTypeSaleInvoice,
		InvoiceDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItem{
			{ProductDescription: "Widget", Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("18"), SaleType: SaleTypeStandard},
		},
	}
	CalculateInvoiceItemAmounts(&invoice.Items[0])

	raw, err := json.Marshal(BuildFBRPayload(&invoice))
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	doc := string(raw)

	for _, field := range []string{
		"TotalSalesValue", "TotalTaxAmount", "TotalInvoiceValue",
		"UnitPrice", "FixedNotifiedValue", "TotalValue",
		"ValueSalesExcludingST", "SalesTaxApplicable", "SalesTaxWithheldAtSource",
		"ExtraTax", "FurtherTax", "FEDPayable", "UOM",
	} {
		if !strings.Contains(doc, `"`+field+`"`) {
			t.Fatalf("payload json missing field %s", field)
		}
	}
}
