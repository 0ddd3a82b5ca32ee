package database

import (
	"gorm.io/gorm"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Booking{},
		&models.Review{},
	)
	if err != nil {
		return err
	}

	// The engine leans on these constraints; AutoMigrate declares them from
	// struct tags, but older databases may predate the tags.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_reviewer_reviewee_booking
		ON reviews (reviewer_id, reviewee_id, booking_id)`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`)
	if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_status_check
		CHECK (status IN ('posted', 'ongoing', 'completed'))`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_seats_nonnegative`)
	if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_seats_nonnegative
		CHECK (seats_available >= 0)`).Error; err != nil {
		return err
	}

	return nil
}
