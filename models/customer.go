package models

import (
	"context"
	"errors"
	"time"

	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/utils"
	"gorm.io/gorm"
)

type Customer struct {
	ID               int              `gorm:"primary_key" json:"id"`
	OwnerId          int              `gorm:"index;not null" json:"owner_id"`
	Name             string           `gorm:"size:200;not null" json:"name" binding:"required"`
	NTNCNIC          string           `gorm:"size:20" json:"ntn_cnic"`
	Address          string           `gorm:"size:500" json:"address"`
	Province         string           `gorm:"size:100" json:"province"`
	RegistrationType RegistrationType `gorm:"type:enum('Registered','Unregistered');not null;default:'Unregistered'" json:"registration_type"`
	Phone            string           `gorm:"size:20" json:"phone"`
	Email            string           `gorm:"size:100" json:"email"`
	Notes            string           `gorm:"type:text" json:"notes"`
	IsActive         *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name             string           `json:"name" binding:"required"`
	NTNCNIC          string           `json:"ntn_cnic"`
	Address          string           `json:"address"`
	Province         string           `json:"province"`
	RegistrationType RegistrationType `json:"registration_type"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Notes            string           `json:"notes"`
}

func (input *NewCustomer) validate(ctx context.Context, ownerId int, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, ownerId, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, ownerId, "name", input.Name, id); err != nil {
		return err
	}
	// validate email
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	// registered buyers must carry a tax number
	if input.RegistrationType == RegistrationTypeRegistered && input.NTNCNIC == "" {
		return errors.New("ntn_cnic is required for registered customers")
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	if err := input.validate(ctx, ownerId, 0); err != nil {
		return nil, err
	}

	if input.RegistrationType == "" {
		input.RegistrationType = RegistrationTypeUnregistered
	}

	customer := Customer{
		OwnerId:          ownerId,
		Name:             input.Name,
		NTNCNIC:          input.NTNCNIC,
		Address:          input.Address,
		Province:         input.Province,
		RegistrationType: input.RegistrationType,
		Phone:            input.Phone,
		Email:            input.Email,
		Notes:            input.Notes,
		IsActive:         utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	if err := input.validate(ctx, ownerId, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, ownerId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&customer).Updates(map[string]interface{}{
		"Name":             input.Name,
		"NTNCNIC":          input.NTNCNIC,
		"Address":          input.Address,
		"Province":         input.Province,
		"RegistrationType": input.RegistrationType,
		"Phone":            input.Phone,
		"Email":            input.Email,
		"Notes":            input.Notes,
	}).Error
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	result, err := utils.FetchModel[Customer](ctx, ownerId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Invoice](ctx, ownerId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("invoice associated with customer exists")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func ToggleActiveCustomer(ctx context.Context, id int, isActive bool) (*Customer, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	customer, err := utils.FetchModel[Customer](ctx, ownerId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&customer).Update("is_active", isActive).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, errors.New("owner id is required")
	}

	return utils.FetchModel[Customer](ctx, ownerId, id)
}

// GetCustomers lists the owner's customers, optionally filtered by a
// name/ntn search term. skip/limit paginate the result; the second
// return value is the unpaginated match count.
func GetCustomers(ctx context.Context, search *string, skip int, limit int) ([]*Customer, int64, error) {
	ownerId, ok := utils.GetOwnerIdFromContext(ctx)
	if !ok || ownerId == 0 {
		return nil, 0, errors.New("owner id is required")
	}

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	db := config.GetDB()
	var results []*Customer
	dbCtx := db.WithContext(ctx).Model(&Customer{}).Where("owner_id = ?", ownerId)
	if search != nil && len(*search) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR ntn_cnic LIKE ?", "%"+*search+"%", "%"+*search+"%")
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
