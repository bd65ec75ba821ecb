package bookings

// CreateBookingRequest reserves seats for a round trip. UserID may only be
// supplied by staff booking on a client's behalf; clients book for
// themselves.
type CreateBookingRequest struct {
	UserID   *string `json:"user_id" binding:"omitempty,uuid"`
	FlightID string  `json:"flight_id" binding:"required"`
	DateFrom string  `json:"date_from" binding:"required"`
	DateTo   string  `json:"date_to" binding:"required"`
	Adults   int     `json:"adults" binding:"required,min=1,max=999"`
	Children int     `json:"children" binding:"omitempty,min=0,max=999"`
}

// UpdateStatusRequest moves a booking through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED CANCELLED"`
}

// BookingListRequest carries the list filters from the query string.
type BookingListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	FlightID string `form:"flight_id"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
	Search   string `form:"search"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}
