package models

import (
	"context"
	"errors"

	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/utils"
	"gorm.io/gorm"
)

// fetchEditableInvoice loads the owner's invoice and rejects the call
// when it already left draft.
func fetchEditableInvoice(ctx context.Context, ownerId int, invoiceId int) (*Invoice, error) {
	invoice, err := utils.FetchModel[Invoice](ctx, ownerId, invoiceId)
	if err != nil {
		return nil, err
	}
	if !invoice.IsEditable() {
		return nil, errors.New("only draft invoices can be modified")
	}
	return invoice, nil
}

// recalculateInvoiceTotals re-reads the stored items and writes fresh
// header totals inside the given transaction.
func recalculateInvoiceTotals(ctx context.Context, tx *gorm.DB, invoiceId int) error {
	var items []InvoiceItem
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoiceId).Find(&items).Error; err != nil {
		return err
	}
	totals := CalculateInvoiceTotals(items)
	return tx.WithContext(ctx).Model(&Invoice{}).Where("id = ?", invoiceId).Updates(map[string]interface{}{
		"TotalSalesValue":   totals.TotalSalesValue,
		"TotalTaxAmount":    totals.TotalTaxAmount,
		"TotalInvoiceValue": totals.TotalInvoiceValue,
	}).Error
}

func AddInvoiceItem(ctx context.Context, invoiceId int, input *NewInvoiceItem) (*InvoiceItem, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	invoice, err := fetchEditableInvoice(ctx, ownerId, invoiceId)
	if err != nil {
		return nil, err
	}

	if err := input.validate(ctx, ownerId); err != nil {
		return nil, err
	}
	if err := applyItemDefaults(ctx, ownerId, []*NewInvoiceItem{input}); err != nil {
		return nil, err
	}

	item := input.toInvoiceItem()
	item.InvoiceId = invoice.ID

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalculateInvoiceTotals(ctx, tx, invoice.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateInvoiceItem(ctx context.Context, invoiceId int, itemId int, input *NewInvoiceItem) (*InvoiceItem, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	invoice, err := fetchEditableInvoice(ctx, ownerId, invoiceId)
	if err != nil {
		return nil, err
	}

	if err := input.validate(ctx, ownerId); err != nil {
		return nil, err
	}
	if err := applyItemDefaults(ctx, ownerId, []*NewInvoiceItem{input}); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var existing InvoiceItem
	if err := db.WithContext(ctx).Where("invoice_id = ?", invoice.ID).First(&existing, itemId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	item := input.toInvoiceItem()
	item.ID = existing.ID
	item.InvoiceId = invoice.ID
	item.CreatedAt = existing.CreatedAt

	tx := db.Begin()
	if err := tx.WithContext(ctx).Save(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalculateInvoiceTotals(ctx, tx, invoice.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func DeleteInvoiceItem(ctx context.Context, invoiceId int, itemId int) (*InvoiceItem, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	invoice, err := fetchEditableInvoice(ctx, ownerId, invoiceId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var existing InvoiceItem
	if err := db.WithContext(ctx).Where("invoice_id = ?", invoice.ID).First(&existing, itemId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(&existing).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalculateInvoiceTotals(ctx, tx, invoice.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &existing, nil
}
