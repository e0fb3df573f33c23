package models

import (
	"log"

	"github.com/taxfocuspk/invoicing_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Company{},
		&Customer{},
		&Product{},
		&Invoice{}, &InvoiceItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
