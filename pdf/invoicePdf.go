// Package pdf renders invoices into printable PDF documents.
package pdf

import (
	"bytes"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/taxfocuspk/invoicing_backend/models"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RenderInvoice produces an A4 PDF for the given invoice.
func RenderInvoice(invoice *models.Invoice, company *models.Company) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	// header
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, company.Name, "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	if company.Address != "" {
		doc.CellFormat(0, 5, company.Address, "", 1, "L", false, 0, "")
	}
	doc.CellFormat(0, 5, "NTN/CNIC: "+company.NTNCNIC, "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 14)
	title := string(invoice.InvoiceType)
	if title == "" {
		title = "Sale Invoice"
	}
	doc.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	doc.Ln(2)

	// invoice meta
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(95, 5, "Invoice Ref No: "+invoice.InvoiceRefNo, "", 0, "L", false, 0, "")
	doc.CellFormat(95, 5, "Date: "+invoice.InvoiceDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	doc.CellFormat(95, 5, "Status: "+string(invoice.CurrentStatus), "", 0, "L", false, 0, "")
	if invoice.FBRReference != "" {
		doc.CellFormat(95, 5, "FBR Invoice No: "+invoice.FBRReference, "", 1, "L", false, 0, "")
	} else {
		doc.Ln(5)
	}
	doc.Ln(4)

	// buyer block
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 5, invoice.BuyerBusinessName, "", 1, "L", false, 0, "")
	if invoice.BuyerNTNCNIC != "" {
		doc.CellFormat(0, 5, "NTN/CNIC: "+invoice.BuyerNTNCNIC, "", 1, "L", false, 0, "")
	}
	if invoice.BuyerAddress != "" {
		doc.CellFormat(0, 5, invoice.BuyerAddress, "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	// item table
	colWidths := []float64{62, 20, 22, 22, 20, 22, 22}
	headers := []string{"Description", "Qty", "Price", "Excl. ST", "Tax %", "Sales Tax", "Total"}

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	for i, h := range headers {
		doc.CellFormat(colWidths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, item := range invoice.Items {
		desc := item.ProductDescription
		if item.HSCode != "" {
			desc = desc + " (" + item.HSCode + ")"
		}
		doc.CellFormat(colWidths[0], 6, desc, "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[1], 6, item.Quantity.String(), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[2], 6, money(item.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[3], 6, money(item.ValueSalesExcludingST), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[4], 6, item.TaxRate.String(), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[5], 6, money(item.SalesTaxApplicable), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[6], 6, money(item.TotalValue), "1", 0, "R", false, 0, "")
		doc.Ln(-1)
	}
	doc.Ln(4)

	// totals block, right aligned
	totalsLabelWidth := 146.0
	totalsValueWidth := 44.0
	writeTotal := func(label string, value decimal.Decimal, bold bool) {
		if bold {
			doc.SetFont("Helvetica", "B", 10)
		} else {
			doc.SetFont("Helvetica", "", 10)
		}
		doc.CellFormat(totalsLabelWidth, 6, label, "", 0, "R", false, 0, "")
		doc.CellFormat(totalsValueWidth, 6, money(value), "1", 1, "R", false, 0, "")
	}
	writeTotal("Total Sales Value (Excl. ST)", invoice.TotalSalesValue, false)
	writeTotal("Total Sales Tax", invoice.TotalTaxAmount, false)
	writeTotal("Total Invoice Value", invoice.TotalInvoiceValue, true)

	if invoice.Notes != "" {
		doc.Ln(6)
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.MultiCell(0, 5, invoice.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
