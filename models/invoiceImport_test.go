package models

import (
	"strings"
	"testing"
)

func TestValidateImportHeader(t *testing.T) {
	good := []string{"invoice_ref_no", "invoice_date", "customer_name", "product_name", "quantity", "unit_price", "discount", "tax_rate"}
	if err := validateImportHeader(good); err != nil {
		t.Fatalf("valid header rejected: %v", err)
	}
	// case and whitespace are tolerated
	sloppy := []string{" Invoice_Ref_No ", "INVOICE_DATE", "customer_name", "product_name", "quantity", "unit_price", "discount", "tax_rate"}
	if err := validateImportHeader(sloppy); err != nil {
		t.Fatalf("case-insensitive header rejected: %v", err)
	}

	if err := validateImportHeader([]string{"invoice_ref_no"}); err == nil {
		t.Fatal("short header should be rejected")
	}
	wrong := append([]string{}, good...)
	wrong[3] = "item_name"
	if err := validateImportHeader(wrong); err == nil {
		t.Fatal("wrong column name should be rejected")
	}
}

func TestParseImportRow(t *testing.T) {
	row := []string{"INV-001", "2026-01-15", "Acme Traders", "Widget", "10", "99.5", "50", "18"}
	ir, err := parseImportRow(2, row)
	if err != nil {
		t.Fatalf("parseImportRow error: %v", err)
	}
	if ir.refNo != "INV-001" {
		t.Fatalf("expected ref no INV-001, got %s", ir.refNo)
	}
	if ir.customerName != "Acme Traders" {
		t.Fatalf("expected customer Acme Traders, got %s", ir.customerName)
	}
	if ir.productName != "Widget" || ir.item.ProductDescription != "Widget" {
		t.Fatalf("expected product Widget, got %s / %s", ir.productName, ir.item.ProductDescription)
	}
	if ir.item.Quantity.String() != "10" || ir.item.UnitPrice.String() != "99.5" {
		t.Fatalf("unexpected quantity/price: %s / %s", ir.item.Quantity, ir.item.UnitPrice)
	}
	if ir.item.Discount.String() != "50" || ir.item.TaxRate.String() != "18" {
		t.Fatalf("unexpected discount/rate: %s / %s", ir.item.Discount, ir.item.TaxRate)
	}
}

func TestParseImportRow_Errors(t *testing.T) {
	cases := []struct {
		name string
		row  []string
		msg  string
	}{
		{"missing ref no", []string{"", "2026-01-15", "Acme", "Widget", "1", "10", "", ""}, "invoice_ref_no"},
		{"bad date", []string{"INV-1", "15/01/2026", "Acme", "Widget", "1", "10", "", ""}, "invoice_date"},
		{"missing customer", []string{"INV-1", "2026-01-15", "", "Widget", "1", "10", "", ""}, "customer_name"},
		{"missing product", []string{"INV-1", "2026-01-15", "Acme", "", "1", "10", "", ""}, "product_name"},
		{"zero quantity", []string{"INV-1", "2026-01-15", "Acme", "Widget", "0", "10", "", ""}, "quantity"},
		{"negative price", []string{"INV-1", "2026-01-15", "Acme", "Widget", "1", "-10", "", ""}, "unit_price"},
		{"bad discount", []string{"INV-1", "2026-01-15", "Acme", "Widget", "1", "10", "abc", ""}, "discount"},
	}
	for _, tc := range cases {
		_, err := parseImportRow(2, tc.row)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.msg) {
			t.Fatalf("%s: expected error about %s, got %v", tc.name, tc.msg, err)
		}
	}
}

func TestGroupImportRows(t *testing.T) {
	rows := []importRow{
		{rowNum: 2, refNo: "INV-1"},
		{rowNum: 3, refNo: "INV-2"},
		{rowNum: 4, refNo: "INV-1"},
		{rowNum: 5, refNo: "INV-3"},
	}
	order, grouped := groupImportRows(rows)

	if len(order) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(order))
	}
	// first-seen order is preserved
	for i, want := range []string{"INV-1", "INV-2", "INV-3"} {
		if order[i] != want {
			t.Fatalf("order[%d] = %s, want %s", i, order[i], want)
		}
	}
	if len(grouped["INV-1"]) != 2 {
		t.Fatalf("expected 2 rows for INV-1, got %d", len(grouped["INV-1"]))
	}
	if grouped["INV-1"][0].rowNum != 2 || grouped["INV-1"][1].rowNum != 4 {
		t.Fatalf("rows for INV-1 out of order: %d, %d", grouped["INV-1"][0].rowNum, grouped["INV-1"][1].rowNum)
	}
}

func TestParseImportRow_OptionalColumnsDefaultToZero(t *testing.T) {
	row := []string{"INV-2", "2026-02-01", "Acme", "Widget", "3", "20"}
	ir, err := parseImportRow(3, row)
	if err != nil {
		t.Fatalf("parseImportRow error: %v", err)
	}
	if !ir.item.Discount.IsZero() || !ir.item.TaxRate.IsZero() {
		t.Fatalf("expected zero discount and tax rate, got %s / %s", ir.item.Discount, ir.item.TaxRate)
	}
}
