package bookings

import (
	"time"

	"travelly/internal/flights"
	"travelly/internal/users"

	"github.com/google/uuid"
)

// CharterBooking reserves seats on one or two ledger dates of a flight. A
// same-day round trip holds both legs on a single date row; distinct dates
// hold one leg each.
type CharterBooking struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	PublicID  string    `json:"public_id" gorm:"uniqueIndex;size:32;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	FlightID  uuid.UUID `json:"flight_id" gorm:"type:uuid;not null;index"`
	DateFrom  time.Time `json:"date_from" gorm:"type:date;not null"`
	DateTo    time.Time `json:"date_to" gorm:"type:date;not null"`
	Adults    int       `json:"adults" gorm:"not null;check:adults >= 1"`
	Children  int       `json:"children" gorm:"not null;default:0;check:children >= 0"`
	Status    Status    `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User   *users.User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Flight *flights.CharterFlight `json:"flight,omitempty" gorm:"foreignKey:FlightID"`
}

// TableName specifies the table name for GORM
func (CharterBooking) TableName() string {
	return "charter_bookings"
}

// Pax is the seat count per leg, adults plus children.
func (b *CharterBooking) Pax() int {
	return b.Adults + b.Children
}

// IsSameDayTrip reports whether both legs fall on one ledger date.
func (b *CharterBooking) IsSameDayTrip() bool {
	return flights.DateKey(b.DateFrom) == flights.DateKey(b.DateTo)
}
