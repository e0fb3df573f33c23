package models

import (
	"context"
	"errors"
	"time"

	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/utils"
)

// Company is the seller profile used on every invoice.
// Each owner has at most one company.
type Company struct {
	ID               int       `gorm:"primary_key" json:"id"`
	OwnerId          int       `gorm:"index;not null" json:"owner_id"`
	Name             string    `gorm:"size:200;not null" json:"name" binding:"required"`
	NTNCNIC          string    `gorm:"size:20;not null" json:"ntn_cnic" binding:"required"`
	Address          string    `gorm:"size:500" json:"address"`
	Province         string    `gorm:"size:100" json:"province"`
	BusinessActivity string    `gorm:"size:200" json:"business_activity"`
	Sector           string    `gorm:"size:200" json:"sector"`
	ScenarioIds      string    `gorm:"size:500" json:"scenario_ids"`
	LogoUrl          string    `json:"logo_url"`
	SandboxToken     string    `gorm:"size:500" json:"sandbox_token"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name             string `json:"name" binding:"required"`
	NTNCNIC          string `json:"ntn_cnic" binding:"required"`
	Address          string `json:"address"`
	Province         string `json:"province"`
	BusinessActivity string `json:"business_activity"`
	Sector           string `json:"sector"`
	ScenarioIds      string `json:"scenario_ids"`
	SandboxToken     string `json:"sandbox_token"`
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	// one company per owner
	count, err := utils.ResourceCountWhere[Company](ctx, ownerId, "id > 0")
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("company already exists")
	}

	company := Company{
		OwnerId:          ownerId,
		Name:             input.Name,
		NTNCNIC:          input.NTNCNIC,
		Address:          input.Address,
		Province:         input.Province,
		BusinessActivity: input.BusinessActivity,
		Sector:           input.Sector,
		ScenarioIds:      input.ScenarioIds,
		SandboxToken:     input.SandboxToken,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// GetCompany returns the owner's company.
// (may return RecordNotFound when the profile hasn't been set up yet)
func GetCompany(ctx context.Context) (*Company, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	db := config.GetDB()
	var result Company
	err := db.WithContext(ctx).Where("owner_id = ?", ownerId).First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func UpdateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	company, err := GetCompany(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&company).Updates(map[string]interface{}{
		"Name":             input.Name,
		"NTNCNIC":          input.NTNCNIC,
		"Address":          input.Address,
		"Province":         input.Province,
		"BusinessActivity": input.BusinessActivity,
		"Sector":           input.Sector,
		"ScenarioIds":      input.ScenarioIds,
		"SandboxToken":     input.SandboxToken,
	}).Error
	if err != nil {
		return nil, err
	}
	return company, nil
}

// UpdateCompanyLogo stores the public URL of an uploaded logo.
func UpdateCompanyLogo(ctx context.Context, logoUrl string) (*Company, error) {
	company, err := GetCompany(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&company).Update("logo_url", logoUrl).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func DeleteCompany(ctx context.Context) (*Company, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	company, err := GetCompany(ctx)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Invoice](ctx, ownerId, "company_id = ?", company.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("invoice associated with company exists")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&company).Error; err != nil {
		return nil, err
	}
	if company.LogoUrl != "" {
		if objectKey := utils.ExtractObjectKeyFromURL(company.LogoUrl); objectKey != "" {
			_ = utils.DeleteObjectFromGCS(ctx, objectKey)
		}
	}
	return company, nil
}
