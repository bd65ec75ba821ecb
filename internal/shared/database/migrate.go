package database

import (
	"travelly/internal/bookings"
	"travelly/internal/flights"
	"travelly/internal/sequence"
	"travelly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&flights.CharterFlight{},
		&flights.CharterFlightDate{},
		&bookings.CharterBooking{},
		&sequence.Counter{},
	)
}
