package postgres

import (
	"relocation/internal/adapters/out/postgres/driverrepo"
	"relocation/internal/adapters/out/postgres/jobrepo"
	"relocation/internal/adapters/out/postgres/offerrepo"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables, including the unique (job_id, driver_id)
// index that keeps offers one per driver.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&driverrepo.DriverDTO{},
		&jobrepo.JobDTO{},
		&jobrepo.RescheduleDTO{},
		&offerrepo.OfferDTO{},
	)
}
