package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the indexes the seat ledger relies on for
// concurrency control and lookup performance.
func MigrateConstraints(db *gorm.DB) error {
	// One ledger row per (flight, calendar date). Bulk calendar inserts use
	// ON CONFLICT DO NOTHING against this index.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_flight_date_unique
		ON charter_flight_dates (flight_id, date);
	`).Error
	if err != nil {
		return err
	}

	// Availability queries filter on seats_left per date.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_flight_dates_availability
		ON charter_flight_dates (date, seats_left);
	`).Error
	if err != nil {
		return err
	}

	// Booking lookups by flight and travel dates (reconciliation guard).
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_flight_dates
		ON charter_bookings (flight_id, date_from, date_to);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
