package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/utils"
	"gorm.io/gorm"
)

// Product carries the full tax profile of a catalog item so that
// invoice lines inherit rates and SRO references from it.
type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OwnerId     int             `gorm:"index;not null" json:"owner_id"`
	Name        string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Description string          `gorm:"size:500" json:"description"`
	HSCode      string          `gorm:"size:20;index" json:"hs_code"`
	UoM         string          `gorm:"size:50" json:"uom"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`

	FixedNotifiedValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fixed_notified_value"`
	WithheldRate       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"withheld_rate"`
	ExtraTaxRate       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"extra_tax_rate"`
	FurtherTaxRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"further_tax_rate"`
	FEDPayableRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fed_payable_rate"`
	SROScheduleNo      string          `gorm:"size:50" json:"sro_schedule_no"`
	SROItemSerialNo    string          `gorm:"size:50" json:"sro_item_serial_no"`

	SaleType  SaleType  `gorm:"size:100;default:'Goods at standard rate (default)'" json:"sale_type"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name               string          `json:"name" binding:"required"`
	Description        string          `json:"description"`
	HSCode             string          `json:"hs_code"`
	UoM                string          `json:"uom"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	FixedNotifiedValue decimal.Decimal `json:"fixed_notified_value"`
	WithheldRate       decimal.Decimal `json:"withheld_rate"`
	ExtraTaxRate       decimal.Decimal `json:"extra_tax_rate"`
	FurtherTaxRate     decimal.Decimal `json:"further_tax_rate"`
	FEDPayableRate     decimal.Decimal `json:"fed_payable_rate"`
	SROScheduleNo      string          `json:"sro_schedule_no"`
	SROItemSerialNo    string          `json:"sro_item_serial_no"`
	SaleType           SaleType        `json:"sale_type"`
}

func (input *NewProduct) validate(ctx context.Context, ownerId int, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, ownerId, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Product](ctx, ownerId, "name", input.Name, id); err != nil {
		return err
	}
	if input.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	if input.FixedNotifiedValue.IsNegative() {
		return errors.New("fixed notified value cannot be negative")
	}
	if input.TaxRate.IsNegative() || input.WithheldRate.IsNegative() ||
		input.ExtraTaxRate.IsNegative() || input.FurtherTaxRate.IsNegative() ||
		input.FEDPayableRate.IsNegative() {
		return errors.New("tax rates cannot be negative")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	if err := input.validate(ctx, ownerId, 0); err != nil {
		return nil, err
	}

	if input.SaleType == "" {
		input.SaleType = SaleTypeStandard
	}

	product := Product{
		OwnerId:            ownerId,
		Name:               input.Name,
		Description:        input.Description,
		HSCode:             input.HSCode,
		UoM:                input.UoM,
		UnitPrice:          input.UnitPrice,
		TaxRate:            input.TaxRate,
		FixedNotifiedValue: input.FixedNotifiedValue,
		WithheldRate:       input.WithheldRate,
		ExtraTaxRate:       input.ExtraTaxRate,
		FurtherTaxRate:     input.FurtherTaxRate,
		FEDPayableRate:     input.FEDPayableRate,
		SROScheduleNo:      input.SROScheduleNo,
		SROItemSerialNo:    input.SROItemSerialNo,
		SaleType:           input.SaleType,
		IsActive:           utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	if err := input.validate(ctx, ownerId, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, ownerId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&product).Updates(map[string]interface{}{
		"Name":               input.Name,
		"Description":        input.Description,
		"HSCode":             input.HSCode,
		"UoM":                input.UoM,
		"UnitPrice":          input.UnitPrice,
		"TaxRate":            input.TaxRate,
		"FixedNotifiedValue": input.FixedNotifiedValue,
		"WithheldRate":       input.WithheldRate,
		"ExtraTaxRate":       input.ExtraTaxRate,
		"FurtherTaxRate":     input.FurtherTaxRate,
		"FEDPayableRate":     input.FEDPayableRate,
		"SROScheduleNo":      input.SROScheduleNo,
		"SROItemSerialNo":    input.SROItemSerialNo,
		"SaleType":           input.SaleType,
	}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	result, err := utils.FetchModel[Product](ctx, ownerId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[InvoiceItem](ctx, 0, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("invoice item associated with product exists")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func ToggleActiveProduct(ctx context.Context, id int, isActive bool) (*Product, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	product, err := utils.FetchModel[Product](ctx, ownerId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&product).Update("is_active", isActive).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	return utils.FetchModel[Product](ctx, ownerId, id)
}

// GetProducts lists the owner's products with optional name/hs_code
// search and skip/limit pagination. The second return value is the
// unpaginated match count.
func GetProducts(ctx context.Context, search *string, skip int, limit int) ([]*Product, int64, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, 0, errors.New("owner id is required")
	}

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	db := config.GetDB()
	var results []*Product
	dbCtx := db.WithContext(ctx).Model(&Product{}).Where("owner_id = ?", ownerId)
	if search != nil && len(*search) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR hs_code LIKE ?", "%"+*search+"%", "%"+*search+"%")
	}
	var count int64
	if err := dbCtx.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	err := dbCtx.Order("name").Offset(skip).Limit(limit).Find(&results).Error
	if err != nil {
		return nil, 0, err
	}

	return results, count, nil
}

// GetProductsByHSCode returns the owner's products carrying the given HS code.
func GetProductsByHSCode(ctx context.Context, hsCode string) ([]*Product, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	db := config.GetDB()
	var results []*Product
	err := db.WithContext(ctx).
		Where("owner_id = ? AND hs_code = ?", ownerId, hsCode).
		Order("name").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
