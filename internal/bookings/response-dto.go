package bookings

import (
	"time"

	"travelly/internal/flights"
	"travelly/internal/users"
)

// BookingResponse is the API shape of a charter booking. Flight and user are
// included when the row was loaded with its relations.
type BookingResponse struct {
	ID        string    `json:"id"`
	PublicID  string    `json:"public_id"`
	UserID    string    `json:"user_id"`
	FlightID  string    `json:"flight_id"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	Adults    int       `json:"adults"`
	Children  int       `json:"children"`
	Pax       int       `json:"pax"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Flight *flights.FlightResponse `json:"flight,omitempty"`
	User   *users.UserSafeResponse `json:"user,omitempty"`
}

type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ToResponse converts a CharterBooking to its API shape.
func (b *CharterBooking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:        b.ID.String(),
		PublicID:  b.PublicID,
		UserID:    b.UserID.String(),
		FlightID:  b.FlightID.String(),
		DateFrom:  b.DateFrom,
		DateTo:    b.DateTo,
		Adults:    b.Adults,
		Children:  b.Children,
		Pax:       b.Pax(),
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}

	if b.Flight != nil {
		flight := b.Flight.ToResponse()
		resp.Flight = &flight
	}
	if b.User != nil {
		user := b.User.ToSafeResponse()
		resp.User = &user
	}

	return resp
}
