package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculateInvoiceItemAmounts(t *testing.T) {
	cases := []struct {
		name          string
		item          InvoiceItem
		expectedExcl  string
		expectedTax   string
		expectedTotal string
	}{
		{
			name: "standard rate",
			item: InvoiceItem{
				Quantity:  d("10"),
				UnitPrice: d("100"),
				TaxRate:   d("18"),
				SaleType:  SaleTypeStandard,
			},
			expectedExcl:  "1000",
			expectedTax:   "180",
			expectedTotal: "1180",
		},
		{
			name: "discount reduces taxable value",
			item: InvoiceItem{
				Quantity:  d("10"),
				UnitPrice: d("100"),
				Discount:  d("200"),
				TaxRate:   d("18"),
				SaleType:  SaleTypeStandard,
			},
			expectedExcl:  "800",
			expectedTax:   "144",
			expectedTotal: "944",
		},
		{
			name: "discount larger than value floors at zero",
			item: InvoiceItem{
				Quantity:  d("1"),
				UnitPrice: d("100"),
				Discount:  d("500"),
				TaxRate:   d("18"),
				SaleType:  SaleTypeStandard,
			},
			expectedExcl:  "0",
			expectedTax:   "0",
			expectedTotal: "0",
		},
		{
			name: "exempt goods carry no tax",
			item: InvoiceItem{
				Quantity:  d("5"),
				UnitPrice: d("200"),
				TaxRate:   d("18"),
				SaleType:  SaleTypeExempt,
			},
			expectedExcl:  "1000",
			expectedTax:   "0",
			expectedTotal: "1000",
		},
		{
			name: "zero-rated goods carry no tax",
			item: InvoiceItem{
				Quantity:  d("5"),
				UnitPrice: d("200"),
				TaxRate:   d("18"),
				SaleType:  SaleTypeZero,
			},
			expectedExcl:  "1000",
			expectedTax:   "0",
			expectedTotal: "1000",
		},
		{
			name: "fractional rate rounds to 4 places",
			item: InvoiceItem{
				Quantity:  d("3"),
				UnitPrice: d("33.33"),
				TaxRate:   d("17"),
				SaleType:  SaleTypeStandard,
			},
			expectedExcl:  "99.99",
			expectedTax:   "16.9983",
			expectedTotal: "116.9883",
		},
	}

	for _, tc := range cases {
		item := tc.item
		CalculateInvoiceItemAmounts(&item)
		if item.ValueSalesExcludingST.String() != tc.expectedExcl {
			t.Fatalf("%s: expected excl %s, got %s", tc.name, tc.expectedExcl, item.ValueSalesExcludingST)
		}
		if item.SalesTaxApplicable.String() != tc.expectedTax {
			t.Fatalf("%s: expected tax %s, got %s", tc.name, tc.expectedTax, item.SalesTaxApplicable)
		}
		if item.TotalValue.String() != tc.expectedTotal {
			t.Fatalf("%s: expected total %s, got %s", tc.name, tc.expectedTotal, item.TotalValue)
		}
	}
}

func TestCalculateInvoiceItemAmounts_ExtraAndFurtherTax(t *testing.T) {
	item := InvoiceItem{
		Quantity:       d("10"),
		UnitPrice:      d("100"),
		TaxRate:        d("18"),
		ExtraTaxRate:   d("3"),
		FurtherTaxRate: d("4"),
		FEDPayableRate: d("1"),
		WithheldRate:   d("20"),
		SaleType:       SaleTypeStandard,
	}
	CalculateInvoiceItemAmounts(&item)

	if item.ExtraTax.String() != "30" {
		t.Fatalf("expected extra tax 30, got %s", item.ExtraTax)
	}
	if item.FurtherTax.String() != "40" {
		t.Fatalf("expected further tax 40, got %s", item.FurtherTax)
	}
	if item.FEDPayable.String() != "10" {
		t.Fatalf("expected fed payable 10, got %s", item.FEDPayable)
	}
	// withheld is a fraction of the sales tax, not the taxable value
	if item.SalesTaxWithheldAtSource.String() != "36" {
		t.Fatalf("expected withheld 36, got %s", item.SalesTaxWithheldAtSource)
	}
	// withheld must not inflate the line total
	if item.TotalValue.String() != "1260" {
		t.Fatalf("expected total 1260, got %s", item.TotalValue)
	}
}

func TestNewInvoiceItemCarriesTaxProfile(t *testing.T) {
	input := NewInvoiceItem{
		Quantity:           d("2"),
		UnitPrice:          d("500"),
		TaxRate:            d("18"),
		ExtraTaxRate:       d("3"),
		FurtherTaxRate:     d("4"),
		FEDPayableRate:     d("1"),
		WithheldRate:       d("20"),
		FixedNotifiedValue: d("450"),
		SROScheduleNo:      "SRO-1125",
		SROItemSerialNo:    "12",
	}
	item := input.toInvoiceItem()

	if item.FixedNotifiedValue.String() != "450" {
		t.Fatalf("expected fixed notified value 450, got %s", item.FixedNotifiedValue)
	}
	if item.SROScheduleNo != "SRO-1125" || item.SROItemSerialNo != "12" {
		t.Fatalf("sro fields lost: %s / %s", item.SROScheduleNo, item.SROItemSerialNo)
	}
	if item.WithheldRate.String() != "20" || item.ExtraTaxRate.String() != "3" ||
		item.FurtherTaxRate.String() != "4" || item.FEDPayableRate.String() != "1" {
		t.Fatal("tax rates lost on conversion")
	}
	// amounts are derived from the carried rates
	if item.ExtraTax.String() != "30" || item.FurtherTax.String() != "40" || item.FEDPayable.String() != "10" {
		t.Fatalf("derived amounts wrong: %s / %s / %s", item.ExtraTax, item.FurtherTax, item.FEDPayable)
	}
	if item.SalesTaxWithheldAtSource.String() != "36" {
		t.Fatalf("expected withheld 36, got %s", item.SalesTaxWithheldAtSource)
	}
}

func TestCalculateInvoiceTotals(t *testing.T) {
	items := []InvoiceItem{
		{Quantity: d("10"), UnitPrice: d("100"), TaxRate: d("18"), SaleType: SaleTypeStandard},
		{Quantity: d("2"), UnitPrice: d("50"), TaxRate: d("17"), SaleType: SaleTypeStandard},
		{Quantity: d("1"), UnitPrice: d("500"), SaleType: SaleTypeExempt},
	}
	for i := range items {
		CalculateInvoiceItemAmounts(&items[i])
	}

	totals := CalculateInvoiceTotals(items)
	if totals.TotalSalesValue.String() != "1600" {
		t.Fatalf("expected total sales value 1600, got %s", totals.TotalSalesValue)
	}
	if totals.TotalTaxAmount.String() != "197" {
		t.Fatalf("expected total tax 197, got %s", totals.TotalTaxAmount)
	}
	if totals.TotalInvoiceValue.String() != "1797" {
		t.Fatalf("expected total invoice value 1797, got %s", totals.TotalInvoiceValue)
	}
}

func TestCalculateInvoiceTotals_Empty(t *testing.T) {
	totals := CalculateInvoiceTotals(nil)
	if !totals.TotalInvoiceValue.IsZero() {
		t.Fatalf("expected zero totals for empty items, got %s", totals.TotalInvoiceValue)
	}
}
