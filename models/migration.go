package models

import (
	"log"

	"github.com/salesync/reports_backend/config"
)

// MigrateTable creates the tables the reports read from. The production
// schema is owned by the CRUD app; this is for local seeding and tests.
func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&CheckIn{},
		&VisitResponse{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
