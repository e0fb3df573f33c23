package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/utils"
	"gorm.io/gorm"
)

type Invoice struct {
	ID            int           `gorm:"primary_key" json:"id"`
	OwnerId       int           `gorm:"index;not null" json:"owner_id"`
	CompanyId     int           `gorm:"index;not null" json:"company_id"`
	CustomerId    int           `gorm:"index;not null" json:"customer_id" binding:"required"`
	InvoiceRefNo  string        `gorm:"size:100;not null;index" json:"invoice_ref_no" binding:"required"`
	InvoiceType   InvoiceType   `gorm:"size:50;not null;default:'Sale Invoice'" json:"invoice_type"`
	InvoiceDate   time.Time     `gorm:"not null" json:"invoice_date" binding:"required"`
	ScenarioId    string        `gorm:"size:50" json:"scenario_id"`
	CurrentStatus InvoiceStatus `gorm:"type:enum('draft','submitted','posted','error');not null;default:'draft'" json:"current_status"`

	// seller snapshot, frozen from the company profile at creation
	SellerNTNCNIC      string `gorm:"size:20" json:"seller_ntn_cnic"`
	SellerBusinessName string `gorm:"size:200" json:"seller_business_name"`
	SellerProvince     string `gorm:"size:100" json:"seller_province"`
	SellerAddress      string `gorm:"size:500" json:"seller_address"`

	// buyer snapshot, frozen from the customer at creation
	BuyerNTNCNIC          string           `gorm:"size:20" json:"buyer_ntn_cnic"`
	BuyerBusinessName     string           `gorm:"size:200" json:"buyer_business_name"`
	BuyerProvince         string           `gorm:"size:100" json:"buyer_province"`
	BuyerAddress          string           `gorm:"size:500" json:"buyer_address"`
	BuyerRegistrationType RegistrationType `gorm:"size:20" json:"buyer_registration_type"`

	FBRReference   string     `gorm:"size:100" json:"fbr_reference"`
	FBRResponse    string     `gorm:"type:text" json:"fbr_response"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	PostedAt       *time.Time `json:"posted_at"`
	Notes          string     `gorm:"type:text" json:"notes"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceId" json:"items"`

	TotalSalesValue   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_sales_value"`
	TotalTaxAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_tax_amount"`
	TotalInvoiceValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_invoice_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID        int `gorm:"primary_key" json:"id"`
	InvoiceId int `gorm:"index;not null" json:"invoice_id"`
	ProductId int `gorm:"index;default:null" json:"product_id"`

	HSCode             string          `gorm:"size:20" json:"hs_code"`
	ProductDescription string          `gorm:"size:500" json:"product_description"`
	UoM                string          `gorm:"size:50" json:"uom"`
	Quantity           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Discount           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	SaleType           SaleType        `gorm:"size:100" json:"sale_type"`

	TaxRate            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	ExtraTaxRate       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"extra_tax_rate"`
	FurtherTaxRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"further_tax_rate"`
	FEDPayableRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fed_payable_rate"`
	WithheldRate       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"withheld_rate"`
	FixedNotifiedValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fixed_notified_value"`

	SROScheduleNo   string `gorm:"size:50" json:"sro_schedule_no"`
	SROItemSerialNo string `gorm:"size:50" json:"sro_item_serial_no"`

	// computed amounts
	ValueSalesExcludingST    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value_sales_excluding_st"`
	SalesTaxApplicable       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_tax_applicable"`
	ExtraTax                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"extra_tax"`
	FurtherTax               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"further_tax"`
	FEDPayable               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fed_payable"`
	SalesTaxWithheldAtSource decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_tax_withheld_at_source"`
	TotalValue               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	CustomerId   int               `json:"customer_id" binding:"required"`
	InvoiceRefNo string            `json:"invoice_ref_no" binding:"required"`
	InvoiceType  InvoiceType       `json:"invoice_type"`
	InvoiceDate  time.Time         `json:"invoice_date" binding:"required"`
	ScenarioId   string            `json:"scenario_id"`
	Notes        string            `json:"notes"`
	Items        []*NewInvoiceItem `json:"items"`
}

type NewInvoiceItem struct {
	ProductId          int             `json:"product_id"`
	HSCode             string          `json:"hs_code"`
	ProductDescription string          `json:"product_description"`
	UoM                string          `json:"uom"`
	Quantity           decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Discount           decimal.Decimal `json:"discount"`
	SaleType           SaleType        `json:"sale_type"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	ExtraTaxRate       decimal.Decimal `json:"extra_tax_rate"`
	FurtherTaxRate     decimal.Decimal `json:"further_tax_rate"`
	FEDPayableRate     decimal.Decimal `json:"fed_payable_rate"`
	WithheldRate       decimal.Decimal `json:"withheld_rate"`
	FixedNotifiedValue decimal.Decimal `json:"fixed_notified_value"`
	SROScheduleNo      string          `json:"sro_schedule_no"`
	SROItemSerialNo    string          `json:"sro_item_serial_no"`
}

type InvoiceTotals struct {
	TotalSalesValue   decimal.Decimal `json:"total_sales_value"`
	TotalTaxAmount    decimal.Decimal `json:"total_tax_amount"`
	TotalInvoiceValue decimal.Decimal `json:"total_invoice_value"`
}

var decimalOneHundred = decimal.NewFromInt(100)

// CalculateInvoiceItemAmounts derives the tax amounts of a single line.
// Taxable value is qty * unit price minus discount, floored at zero.
// Withheld tax is informational and excluded from the line total.
// Exempt and zero-rated sales carry no tax at all.
func CalculateInvoiceItemAmounts(item *InvoiceItem) {
	taxable := item.Quantity.Mul(item.UnitPrice).Sub(item.Discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	item.ValueSalesExcludingST = taxable

	if item.SaleType.IsExempt() {
		item.SalesTaxApplicable = decimal.Zero
		item.ExtraTax = decimal.Zero
		item.FurtherTax = decimal.Zero
		item.FEDPayable = decimal.Zero
		item.SalesTaxWithheldAtSource = decimal.Zero
		item.TotalValue = taxable
		return
	}

	item.SalesTaxApplicable = taxable.Mul(item.TaxRate).DivRound(decimalOneHundred, 4)
	item.ExtraTax = taxable.Mul(item.ExtraTaxRate).DivRound(decimalOneHundred, 4)
	item.FurtherTax = taxable.Mul(item.FurtherTaxRate).DivRound(decimalOneHundred, 4)
	item.FEDPayable = taxable.Mul(item.FEDPayableRate).DivRound(decimalOneHundred, 4)
	item.SalesTaxWithheldAtSource = item.SalesTaxApplicable.Mul(item.WithheldRate).DivRound(decimalOneHundred, 4)

	item.TotalValue = taxable.
		Add(item.SalesTaxApplicable).
		Add(item.ExtraTax).
		Add(item.FurtherTax).
		Add(item.FEDPayable)
}

// CalculateInvoiceTotals sums line amounts into the invoice header totals.
func CalculateInvoiceTotals(items []InvoiceItem) InvoiceTotals {
	var totals InvoiceTotals
	totals.TotalSalesValue = decimal.Zero
	totals.TotalTaxAmount = decimal.Zero
	totals.TotalInvoiceValue = decimal.Zero
	for _, item := range items {
		totals.TotalSalesValue = totals.TotalSalesValue.Add(item.ValueSalesExcludingST)
		totals.TotalTaxAmount = totals.TotalTaxAmount.Add(item.SalesTaxApplicable)
		totals.TotalInvoiceValue = totals.TotalInvoiceValue.Add(item.TotalValue)
	}
	return totals
}

var invoiceStatusTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusSubmitted, InvoiceStatusError},
	InvoiceStatusError:     {InvoiceStatusSubmitted, InvoiceStatusError},
	InvoiceStatusSubmitted: {InvoiceStatusPosted},
	InvoiceStatusPosted:    {},
}

// ValidateStatusTransition rejects lifecycle moves the state machine
// doesn't allow. Posted is terminal.
func ValidateStatusTransition(from InvoiceStatus, to InvoiceStatus) error {
	for _, allowed := range invoiceStatusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("cannot change invoice status from %s to %s", from, to)
}

// IsEditable reports whether the invoice content may still change.
func (invoice *Invoice) IsEditable() bool {
	return invoice.CurrentStatus == InvoiceStatusDraft
}

func (item *NewInvoiceItem) toInvoiceItem() InvoiceItem {
	invoiceItem := InvoiceItem{
		ProductId:          item.ProductId,
		HSCode:             item.HSCode,
		ProductDescription: item.ProductDescription,
		UoM:                item.UoM,
		Quantity:           item.Quantity,
		UnitPrice:          item.UnitPrice,
		Discount:           item.Discount,
		SaleType:           item.SaleType,
		TaxRate:            item.TaxRate,
		ExtraTaxRate:       item.ExtraTaxRate,
		FurtherTaxRate:     item.FurtherTaxRate,
		FEDPayableRate:     item.FEDPayableRate,
		WithheldRate:       item.WithheldRate,
		FixedNotifiedValue: item.FixedNotifiedValue,
		SROScheduleNo:      item.SROScheduleNo,
		SROItemSerialNo:    item.SROItemSerialNo,
	}
	if invoiceItem.SaleType == "" {
		invoiceItem.SaleType = SaleTypeStandard
	}
	CalculateInvoiceItemAmounts(&invoiceItem)
	return invoiceItem
}

func (item *NewInvoiceItem) validate(ctx context.Context, ownerId int) error {
	if item.Quantity.LessThanOrEqual(decimal.Zero) {
		return errors.New("quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	if item.Discount.IsNegative() {
		return errors.New("discount cannot be negative")
	}
	if item.ProductId > 0 {
		if err := utils.ValidateResourceId[Product](ctx, ownerId, item.ProductId); err != nil {
			return errors.New("product not found")
		}
	}
	return nil
}

func (input *NewInvoice) validate(ctx context.Context, ownerId int, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Invoice](ctx, ownerId, id); err != nil {
			return err
		}
	}
	// ref no is unique per owner
	if err := utils.ValidateUnique[Invoice](ctx, ownerId, "invoice_ref_no", input.InvoiceRefNo, id); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Customer](ctx, ownerId, input.CustomerId); err != nil {
		return errors.New("customer not found")
	}
	for _, item := range input.Items {
		if err := item.validate(ctx, ownerId); err != nil {
			return err
		}
	}
	return nil
}

// applyItemDefaults fills item fields from the referenced product when
// the input leaves them blank.
func applyItemDefaults(ctx context.Context, ownerId int, items []*NewInvoiceItem) error {
	for _, item := range items {
		if item.ProductId <= 0 {
			continue
		}
		product, err := utils.FetchModel[Product](ctx, ownerId, item.ProductId)
		if err != nil {
			return errors.New("product not found")
		}
		if item.HSCode == "" {
			item.HSCode = product.HSCode
		}
		if item.ProductDescription == "" {
			item.ProductDescription = product.Name
		}
		if item.UoM == "" {
			item.UoM = product.UoM
		}
		if item.UnitPrice.IsZero() {
			item.UnitPrice = product.UnitPrice
		}
		if item.TaxRate.IsZero() {
			item.TaxRate = product.TaxRate
		}
		if item.WithheldRate.IsZero() {
			item.WithheldRate = product.WithheldRate
		}
		if item.ExtraTaxRate.IsZero() {
			item.ExtraTaxRate = product.ExtraTaxRate
		}
		if item.FurtherTaxRate.IsZero() {
			item.FurtherTaxRate = product.FurtherTaxRate
		}
		if item.FEDPayableRate.IsZero() {
			item.FEDPayableRate = product.FEDPayableRate
		}
		if item.FixedNotifiedValue.IsZero() {
			item.FixedNotifiedValue = product.FixedNotifiedValue
		}
		if item.SROScheduleNo == "" {
			item.SROScheduleNo = product.SROScheduleNo
		}
		if item.SROItemSerialNo == "" {
			item.SROItemSerialNo = product.SROItemSerialNo
		}
		if item.SaleType == "" {
			item.SaleType = product.SaleType
		}
	}
	return nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	company, err := GetCompany(ctx)
	if err != nil {
		return nil, errors.New("company profile is required")
	}

	if err := input.validate(ctx, ownerId, 0); err != nil {
		return nil, err
	}
	if err := applyItemDefaults(ctx, ownerId, input.Items); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, ownerId, input.CustomerId)
	if err != nil {
		return nil, errors.New("customer not found")
	}

	if input.InvoiceType == "" {
		input.InvoiceType = InvoiceTypeSaleInvoice
	}

	items := make([]InvoiceItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, item.toInvoiceItem())
	}
	totals := CalculateInvoiceTotals(items)

	invoice := Invoice{
		OwnerId:       ownerId,
		CompanyId:     company.ID,
		CustomerId:    customer.ID,
		InvoiceRefNo:  input.InvoiceRefNo,
		InvoiceType:   input.InvoiceType,
		InvoiceDate:   input.InvoiceDate,
		ScenarioId:    input.ScenarioId,
		CurrentStatus: InvoiceStatusDraft,

		SellerNTNCNIC:      company.NTNCNIC,
		SellerBusinessName: company.Name,
		SellerProvince:     company.Province,
		SellerAddress:      company.Address,

		BuyerNTNCNIC:          customer.NTNCNIC,
		BuyerBusinessName:     customer.Name,
		BuyerProvince:         customer.Province,
		BuyerAddress:          customer.Address,
		BuyerRegistrationType: customer.RegistrationType,

		Notes: input.Notes,
		Items: items,

		TotalSalesValue:   totals.TotalSalesValue,
		TotalTaxAmount:    totals.TotalTaxAmount,
		TotalInvoiceValue: totals.TotalInvoiceValue,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &invoice, nil
}

func UpdateInvoice(ctx context.Context, id int, input *NewInvoice) (*Invoice, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, ownerId, id, "Items")
	if err != nil {
		return nil, err
	}
	if !invoice.IsEditable() {
		return nil, errors.New("only draft invoices can be updated")
	}

	if err := input.validate(ctx, ownerId, id); err != nil {
		return nil, err
	}
	if err := applyItemDefaults(ctx, ownerId, input.Items); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, ownerId, input.CustomerId)
	if err != nil {
		return nil, errors.New("customer not found")
	}

	items := make([]InvoiceItem, 0, len(input.Items))
	for _, item := range input.Items {
		newItem := item.toInvoiceItem()
		newItem.InvoiceId = invoice.ID
		items = append(items, newItem)
	}
	totals := CalculateInvoiceTotals(items)

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&invoice).Updates(map[string]interface{}{
		"CustomerId":            customer.ID,
		"InvoiceRefNo":          input.InvoiceRefNo,
		"InvoiceType":           input.InvoiceType,
		"InvoiceDate":           input.InvoiceDate,
		"ScenarioId":            input.ScenarioId,
		"Notes":                 input.Notes,
		"BuyerNTNCNIC":          customer.NTNCNIC,
		"BuyerBusinessName":     customer.Name,
		"BuyerProvince":         customer.Province,
		"BuyerAddress":          customer.Address,
		"BuyerRegistrationType": customer.RegistrationType,
		"TotalSalesValue":       totals.TotalSalesValue,
		"TotalTaxAmount":        totals.TotalTaxAmount,
		"TotalInvoiceValue":     totals.TotalInvoiceValue,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// replace line items wholesale
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoice.ID).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(items) > 0 {
		if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invoice.Items = items
	return invoice, nil
}

func DeleteInvoice(ctx context.Context, id int) (*Invoice, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, ownerId, id)
	if err != nil {
		return nil, err
	}
	if !invoice.IsEditable() {
		return nil, errors.New("only draft invoices can be deleted")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoice.ID).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	return utils.FetchModel[Invoice](ctx, ownerId, id, "Items")
}

// GetInvoices lists the owner's invoices, optionally filtered by status
// and a ref-no/buyer search term, newest first. The second return
// value is the unpaginated match count.
func GetInvoices(ctx context.Context, status *InvoiceStatus, search *string, skip int, limit int) ([]*Invoice, int64, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, 0, errors.New("owner id is required")
	}

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	db := config.GetDB()
	var results []*Invoice
	dbCtx := db.WithContext(ctx).Model(&Invoice{}).Where("owner_id = ?", ownerId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("current_status = ?", *status)
	}
	if search != nil && len(*search) > 0 {
		dbCtx = dbCtx.Where("invoice_ref_no LIKE ? OR buyer_business_name LIKE ?", "%"+*search+"%", "%"+*search+"%")
	}
	var count int64
	if err := dbCtx.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	err := dbCtx.Preload("Items").Order("invoice_date DESC, id DESC").Offset(skip).Limit(limit).Find(&results).Error
	if err != nil {
		return nil, 0, err
	}

	return results, count, nil
}

// PreviewInvoiceTotals computes line amounts and totals without touching
// the database, so clients can show figures before saving.
func PreviewInvoiceTotals(input *NewInvoice) (*Invoice, error) {
	items := make([]InvoiceItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("quantity must be positive")
		}
		items = append(items, item.toInvoiceItem())
	}
	totals := CalculateInvoiceTotals(items)

	invoice := Invoice{
		InvoiceRefNo:      input.InvoiceRefNo,
		InvoiceType:       input.InvoiceType,
		InvoiceDate:       input.InvoiceDate,
		Items:             items,
		TotalSalesValue:   totals.TotalSalesValue,
		TotalTaxAmount:    totals.TotalTaxAmount,
		TotalInvoiceValue: totals.TotalInvoiceValue,
	}
	return &invoice, nil
}
