package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/fbr"
	"github.com/taxfocuspk/invoicing_backend/utils"
)

const invoiceDateLayout = "2006-01-02"

// BuildFBRPayload maps a stored invoice onto the tax authority's
// document shape. The invoice must carry its items.
func BuildFBRPayload(invoice *Invoice) *fbr.InvoicePayload {
	payload := fbr.InvoicePayload{
		InvoiceType:           string(invoice.InvoiceType),
		InvoiceDate:           invoice.InvoiceDate.Format(invoiceDateLayout),
		InvoiceRefNo:          invoice.InvoiceRefNo,
		SellerNTNCNIC:         invoice.SellerNTNCNIC,
		SellerBusinessName:    invoice.SellerBusinessName,
		SellerProvince:        invoice.SellerProvince,
		SellerAddress:         invoice.SellerAddress,
		BuyerNTNCNIC:          invoice.BuyerNTNCNIC,
		BuyerBusinessName:     invoice.BuyerBusinessName,
		BuyerProvince:         invoice.BuyerProvince,
		BuyerAddress:          invoice.BuyerAddress,
		BuyerRegistrationType: string(invoice.BuyerRegistrationType),
		ScenarioId:            invoice.ScenarioId,
		TotalSalesValue:       invoice.TotalSalesValue,
		TotalTaxAmount:        invoice.TotalTaxAmount,
		TotalInvoiceValue:     invoice.TotalInvoiceValue,
	}

	for _, item := range invoice.Items {
		payload.Items = append(payload.Items, fbr.ItemPayload{
			HSCode:                   item.HSCode,
			ProductDescription:       item.ProductDescription,
			Rate:                     item.TaxRate.String() + "%",
			UoM:                      item.UoM,
			Quantity:                 item.Quantity,
			UnitPrice:                item.UnitPrice,
			TotalValue:               item.TotalValue,
			ValueSalesExcludingST:    item.ValueSalesExcludingST,
			SalesTaxApplicable:       item.SalesTaxApplicable,
			SalesTaxWithheldAtSource: item.SalesTaxWithheldAtSource,
			ExtraTax:                 item.ExtraTax,
			FurtherTax:               item.FurtherTax,
			FEDPayable:               item.FEDPayable,
			FixedNotifiedValue:       item.FixedNotifiedValue,
			Discount:                 item.Discount,
			SaleType:                 string(item.SaleType),
			SROScheduleNo:            item.SROScheduleNo,
			SROItemSerialNo:          item.SROItemSerialNo,
		})
	}

	return &payload
}

// GetInvoiceFBRPayload returns the document that would be sent on
// submission, without submitting anything.
func GetInvoiceFBRPayload(ctx context.Context, id int) (*fbr.InvoicePayload, error) {
	invoice, err := GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildFBRPayload(invoice), nil
}

// SubmitInvoice sends a draft (or previously failed) invoice to the tax
// authority. On acceptance the invoice moves to submitted and records
// the authority's invoice number; on rejection it moves to error with
// the raw response stored for inspection. A per-owner lock keeps
// concurrent submissions from racing.
func SubmitInvoice(ctx context.Context, id int) (*Invoice, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	release, err := utils.OwnerLock(ctx, ownerId, "InvoiceSubmit", "Invoice", "SubmitInvoice")
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := utils.FetchModel[Invoice](ctx, ownerId, id, "Items")
	if err != nil {
		return nil, err
	}

	if err := ValidateStatusTransition(invoice.CurrentStatus, InvoiceStatusSubmitted); err != nil {
		return nil, err
	}
	if len(invoice.Items) == 0 {
		return nil, errors.New("invoice has no items")
	}

	company, err := GetCompany(ctx)
	if err != nil {
		return nil, errors.New("company profile is required")
	}

	client, err := fbr.NewClient(company.SandboxToken)
	if err != nil {
		return nil, err
	}

	payload := BuildFBRPayload(invoice)
	result, err := client.PostInvoice(ctx, payload)
	if err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "Invoice", "SubmitInvoice", "fbr submission call failed", invoice.InvoiceRefNo, err)
		return nil, err
	}

	db := config.GetDB()
	now := time.Now()
	if result.Accepted {
		err = db.WithContext(ctx).Model(&invoice).Updates(map[string]interface{}{
			"CurrentStatus": InvoiceStatusSubmitted,
			"FBRReference":  result.InvoiceNumber,
			"FBRResponse":   result.RawResponse,
			"SubmittedAt":   &now,
		}).Error
	} else {
		err = db.WithContext(ctx).Model(&invoice).Updates(map[string]interface{}{
			"CurrentStatus": InvoiceStatusError,
			"FBRResponse":   result.RawResponse,
		}).Error
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RefreshInvoiceStatus polls the authority for a submitted invoice and
// moves it to posted once the authority has it on ledger.
func RefreshInvoiceStatus(ctx context.Context, id int) (*Invoice, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, ownerId, id, "Items")
	if err != nil {
		return nil, err
	}

	if invoice.CurrentStatus != InvoiceStatusSubmitted {
		return nil, errors.New("only submitted invoices can be refreshed")
	}

	company, err := GetCompany(ctx)
	if err != nil {
		return nil, errors.New("company profile is required")
	}

	client, err := fbr.NewClient(company.SandboxToken)
	if err != nil {
		return nil, err
	}

	status, err := client.GetInvoiceStatus(ctx, invoice.FBRReference)
	if err != nil {
		return nil, err
	}

	if status == string(InvoiceStatusPosted) {
		if err := ValidateStatusTransition(invoice.CurrentStatus, InvoiceStatusPosted); err != nil {
			return nil, err
		}
		db := config.GetDB()
		now := time.Now()
		err = db.WithContext(ctx).Model(&invoice).Updates(map[string]interface{}{
			"CurrentStatus": InvoiceStatusPosted,
			"PostedAt":      &now,
		}).Error
		if err != nil {
			return nil, err
		}
	}
	return invoice, nil
}

// CloneInvoice copies any invoice back into a fresh draft. FBR fields
// are cleared and the ref no gets a -COPY suffix, deduplicated when the
// invoice was cloned before.
func CloneInvoice(ctx context.Context, id int) (*Invoice, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	source, err := utils.FetchModel[Invoice](ctx, ownerId, id, "Items")
	if err != nil {
		return nil, err
	}

	refNo, err := nextCloneRefNo(ctx, ownerId, source.InvoiceRefNo)
	if err != nil {
		return nil, err
	}

	clone := *source
	clone.ID = 0
	clone.InvoiceRefNo = refNo
	clone.CurrentStatus = InvoiceStatusDraft
	clone.FBRReference = ""
	clone.FBRResponse = ""
	clone.SubmittedAt = nil
	clone.PostedAt = nil
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}

	items := make([]InvoiceItem, 0, len(source.Items))
	for _, item := range source.Items {
		newItem := item
		newItem.ID = 0
		newItem.InvoiceId = 0
		newItem.CreatedAt = time.Time{}
		newItem.UpdatedAt = time.Time{}
		items = append(items, newItem)
	}
	clone.Items = items

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&clone).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &clone, nil
}

// nextCloneRefNo picks "<ref>-COPY", then "<ref>-COPY-2" and so on
// until the ref no is free for this owner.
func nextCloneRefNo(ctx context.Context, ownerId int, refNo string) (string, error) {
	candidate := refNo + "-COPY"
	for i := 2; ; i++ {
		count, err := utils.ResourceCountWhere[Invoice](ctx, ownerId, "invoice_ref_no = ?", candidate)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-COPY-%d", refNo, i)
	}
}
