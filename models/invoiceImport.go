package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/utils"
	"github.com/xuri/excelize/v2"
)

// ImportRowError reports why a spreadsheet row was skipped.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	CreatedInvoices []*Invoice       `json:"created_invoices"`
	RowErrors       []ImportRowError `json:"row_errors"`
}

// expected column order of the import sheet, first row is the header
var importColumns = []string{
	"invoice_ref_no", "invoice_date", "customer_name", "product_name",
	"quantity", "unit_price", "discount", "tax_rate",
}

type importRow struct {
	rowNum       int
	refNo        string
	invoiceDate  time.Time
	customerName string
	productName  string
	item         *NewInvoiceItem
}

// groupImportRows buckets parsed rows into invoices by ref no,
// preserving first-seen order.
func groupImportRows(parsed []importRow) ([]string, map[string][]importRow) {
	var order []string
	grouped := make(map[string][]importRow)
	for _, ir := range parsed {
		if _, seen := grouped[ir.refNo]; !seen {
			order = append(order, ir.refNo)
		}
		grouped[ir.refNo] = append(grouped[ir.refNo], ir)
	}
	return order, grouped
}

// ImportInvoicesFromExcel reads an .xlsx upload and creates draft
// invoices from its rows. Rows sharing an invoice_ref_no become one
// invoice with multiple items. Bad rows are reported, not fatal.
func ImportInvoicesFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, errors.New("invalid excel file")
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("excel file has no data rows")
	}

	if err := validateImportHeader(rows[0]); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	parsed := make([]importRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		ir, err := parseImportRow(rowNum, row)
		if err != nil {
			result.RowErrors = append(result.RowErrors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		// resolve the product so its tax profile flows onto the item
		product, err := findProductByName(ctx, ownerId, ir.productName)
		if err != nil {
			result.RowErrors = append(result.RowErrors, ImportRowError{
				Row:     rowNum,
				Message: fmt.Sprintf("product %q not found", ir.productName),
			})
			continue
		}
		ir.item.ProductId = product.ID
		parsed = append(parsed, *ir)
	}

	order, grouped := groupImportRows(parsed)

	for _, refNo := range order {
		group := grouped[refNo]
		first := group[0]

		customer, err := findCustomerByName(ctx, ownerId, first.customerName)
		if err != nil {
			result.RowErrors = append(result.RowErrors, ImportRowError{
				Row:     first.rowNum,
				Message: fmt.Sprintf("customer %q not found", first.customerName),
			})
			continue
		}

		input := NewInvoice{
			CustomerId:   customer.ID,
			InvoiceRefNo: refNo,
			InvoiceDate:  first.invoiceDate,
		}
		for _, ir := range group {
			input.Items = append(input.Items, ir.item)
		}

		invoice, err := CreateInvoice(ctx, &input)
		if err != nil {
			result.RowErrors = append(result.RowErrors, ImportRowError{Row: first.rowNum, Message: err.Error()})
			continue
		}
		result.CreatedInvoices = append(result.CreatedInvoices, invoice)
	}

	return result, nil
}

func validateImportHeader(header []string) error {
	if len(header) < len(importColumns) {
		return errors.New("unexpected header, expected: " + strings.Join(importColumns, ", "))
	}
	for i, want := range importColumns {
		got := strings.TrimSpace(strings.ToLower(header[i]))
		if got != want {
			return fmt.Errorf("unexpected header column %d: got %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

func parseImportRow(rowNum int, row []string) (*importRow, error) {
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	refNo := get(0)
	if refNo == "" {
		return nil, errors.New("invoice_ref_no is required")
	}
	invoiceDate, err := time.Parse(invoiceDateLayout, get(1))
	if err != nil {
		return nil, errors.New("invalid invoice_date, expected YYYY-MM-DD")
	}
	customerName := get(2)
	if customerName == "" {
		return nil, errors.New("customer_name is required")
	}
	productName := get(3)
	if productName == "" {
		return nil, errors.New("product_name is required")
	}

	quantity, err := utils.ParseDecimal(get(4))
	if err != nil || quantity.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("invalid quantity")
	}
	unitPrice, err := utils.ParseDecimal(get(5))
	if err != nil || unitPrice.IsNegative() {
		return nil, errors.New("invalid unit_price")
	}

	discount := decimal.Zero
	if v := get(6); v != "" {
		discount, err = utils.ParseDecimal(v)
		if err != nil || discount.IsNegative() {
			return nil, errors.New("invalid discount")
		}
	}
	taxRate := decimal.Zero
	if v := get(7); v != "" {
		taxRate, err = utils.ParseDecimal(v)
		if err != nil || taxRate.IsNegative() {
			return nil, errors.New("invalid tax_rate")
		}
	}

	return &importRow{
		rowNum:       rowNum,
		refNo:        refNo,
		invoiceDate:  invoiceDate,
		customerName: customerName,
		productName:  productName,
		item: &NewInvoiceItem{
			ProductDescription: productName,
			Quantity:           quantity,
			UnitPrice:          unitPrice,
			Discount:           discount,
			TaxRate:            taxRate,
		},
	}, nil
}

func findCustomerByName(ctx context.Context, ownerId int, name string) (*Customer, error) {
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).Where("owner_id = ? AND name = ?", ownerId, name).First(&customer).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &customer, nil
}

func findProductByName(ctx context.Context, ownerId int, name string) (*Product, error) {
	db := config.GetDB()
	var product Product
	err := db.WithContext(ctx).Where("owner_id = ? AND name = ?", ownerId, name).First(&product).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &product, nil
}
