package utils

import (
	"context"

	"github.com/taxfocuspk/invoicing_backend/config"
)

/* DB fetching */

// fetch model from db
// (may return RecordNotFound)
func FetchSingleModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		return nil, ErrorRecordNotFound
	}
	return &result, nil
}

// fetch model from db
// (owner_id is used in query's WHERE; a record owned by someone else
// returns NotPermitted, a missing one RecordNotFound)
func FetchModel[T any](ctx context.Context, ownerId int, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("owner_id = ?", ownerId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		var other T
		if db.WithContext(ctx).Select("id").First(&other, id).Error == nil {
			return nil, ErrorNotPermitted
		}
		return nil, ErrorRecordNotFound
	}
	return &result, nil
}

// fetch all models from db
// (owner_id is used in query's WHERE)
func FetchAllModels[T any](ctx context.Context, ownerId int, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("owner_id = ?", ownerId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
