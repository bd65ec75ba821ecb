package flights

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CharterCategories is the fixed vocabulary a flight may be tagged with.
var CharterCategories = []string{
	"beach",
	"ski",
	"excursion",
	"family",
	"luxury",
	"city-break",
	"exotic",
	"wellness",
	"early-booking",
	"last-minute",
}

// IsValidCategory reports whether c belongs to the category vocabulary.
func IsValidCategory(c string) bool {
	for _, known := range CharterCategories {
		if c == known {
			return true
		}
	}
	return false
}

// RegisterValidators installs custom binding validators. Called once at
// startup.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("chartercategory", func(fl validator.FieldLevel) bool {
			return IsValidCategory(fl.Field().String())
		})
	}
}

// CharterFlight is a recurring charter route with a weekly operating pattern
// over a validity window. Its bookable inventory lives in CharterFlightDate
// rows, one per operating day.
type CharterFlight struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	PublicID         string     `json:"public_id" gorm:"uniqueIndex;size:32;not null"`
	From             string     `json:"from" gorm:"column:from_city;not null;size:100"`
	To               string     `json:"to" gorm:"column:to_city;not null;size:100"`
	DateFrom         time.Time  `json:"date_from" gorm:"type:date;not null"`
	DateTo           time.Time  `json:"date_to" gorm:"type:date;not null"`
	WeekDays         []int      `json:"week_days" gorm:"serializer:json;type:jsonb;not null"`
	Categories       []string   `json:"categories" gorm:"serializer:json;type:jsonb;not null"`
	SeatsTotal       int        `json:"seats_total" gorm:"not null;check:seats_total >= 1"`
	IsActive         bool       `json:"is_active" gorm:"not null;default:true;index"`
	HasBusinessClass bool       `json:"has_business_class" gorm:"not null;default:false"`
	HasComfortClass  bool       `json:"has_comfort_class" gorm:"not null;default:false"`
	CreatedBy        *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// CharterFlightDate is the seat ledger: one row per (flight, operating day).
// It is the unit of concurrency control and is only ever mutated with
// conditional single-statement arithmetic, never read-then-written.
type CharterFlightDate struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	FlightID   uuid.UUID `json:"flight_id" gorm:"type:uuid;not null;index"`
	Date       time.Time `json:"date" gorm:"type:date;not null"`
	SeatsTotal int       `json:"seats_total" gorm:"not null;check:seats_total >= 0"`
	SeatsLeft  int       `json:"seats_left" gorm:"not null;check:seats_left >= 0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (CharterFlight) TableName() string {
	return "charter_flights"
}

func (CharterFlightDate) TableName() string {
	return "charter_flight_dates"
}

// CreateFlightRequest is the admin payload for defining a charter flight.
type CreateFlightRequest struct {
	From             string   `json:"from" binding:"required,min=2,max=100"`
	To               string   `json:"to" binding:"required,min=2,max=100"`
	DateFrom         string   `json:"date_from" binding:"required"`
	DateTo           string   `json:"date_to" binding:"required"`
	WeekDays         []int    `json:"week_days" binding:"required,min=1,max=7,dive,min=1,max=7"`
	Categories       []string `json:"categories" binding:"omitempty,max=50,dive,chartercategory"`
	SeatsTotal       int      `json:"seats_total" binding:"required,min=1,max=10000"`
	IsActive         *bool    `json:"is_active"`
	HasBusinessClass *bool    `json:"has_business_class"`
	HasComfortClass  *bool    `json:"has_comfort_class"`
}

// UpdateFlightRequest applies partial changes; nil fields are left untouched.
type UpdateFlightRequest struct {
	From             *string  `json:"from" binding:"omitempty,min=2,max=100"`
	To               *string  `json:"to" binding:"omitempty,min=2,max=100"`
	DateFrom         *string  `json:"date_from"`
	DateTo           *string  `json:"date_to"`
	WeekDays         []int    `json:"week_days" binding:"omitempty,min=1,max=7,dive,min=1,max=7"`
	Categories       []string `json:"categories" binding:"omitempty,max=50,dive,chartercategory"`
	SeatsTotal       *int     `json:"seats_total" binding:"omitempty,min=1,max=10000"`
	IsActive         *bool    `json:"is_active"`
	HasBusinessClass *bool    `json:"has_business_class"`
	HasComfortClass  *bool    `json:"has_comfort_class"`
}

// FlightListRequest carries the raw query-string filters.
type FlightListRequest struct {
	Page             int    `form:"page" binding:"omitempty,min=1"`
	Limit            int    `form:"limit" binding:"omitempty,min=1,max=100"`
	From             string `form:"from"`
	To               string `form:"to"`
	Categories       string `form:"categories"` // comma-separated
	HasBusinessClass *bool  `form:"has_business_class"`
	HasComfortClass  *bool  `form:"has_comfort_class"`
	HasSeats         bool   `form:"has_seats"`
	IsActive         *bool  `form:"is_active"` // admin only; public forces true
	DateFrom         string `form:"date_from"`
	DateTo           string `form:"date_to"`
	Pax              int    `form:"pax" binding:"omitempty,min=1,max=999"`
}

// FlightListQuery is the parsed, normalized filter set the repository runs.
type FlightListQuery struct {
	Page             int
	Limit            int
	From             string
	To               string
	Categories       []string
	HasBusinessClass *bool
	HasComfortClass  *bool
	HasSeats         bool
	IsActive         *bool
	DateFrom         *time.Time
	DateTo           *time.Time
	Pax              int
}

// FlightResponse is the public shape of a charter flight.
type FlightResponse struct {
	ID               string    `json:"id"`
	PublicID         string    `json:"public_id"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	DateFrom         time.Time `json:"date_from"`
	DateTo           time.Time `json:"date_to"`
	WeekDays         []int     `json:"week_days"`
	Categories       []string  `json:"categories"`
	SeatsTotal       int       `json:"seats_total"`
	IsActive         bool      `json:"is_active"`
	HasBusinessClass bool      `json:"has_business_class"`
	HasComfortClass  bool      `json:"has_comfort_class"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FlightDateResponse is one availability row of a flight's ledger.
type FlightDateResponse struct {
	Date       time.Time `json:"date"`
	SeatsTotal int       `json:"seats_total"`
	SeatsLeft  int       `json:"seats_left"`
}

type PaginatedFlights struct {
	Flights    []FlightResponse `json:"flights"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// ToResponse converts a CharterFlight to its API shape.
func (f *CharterFlight) ToResponse() FlightResponse {
	weekDays := f.WeekDays
	if weekDays == nil {
		weekDays = []int{}
	}
	categories := f.Categories
	if categories == nil {
		categories = []string{}
	}

	return FlightResponse{
		ID:               f.ID.String(),
		PublicID:         f.PublicID,
		From:             f.From,
		To:               f.To,
		DateFrom:         f.DateFrom,
		DateTo:           f.DateTo,
		WeekDays:         weekDays,
		Categories:       categories,
		SeatsTotal:       f.SeatsTotal,
		IsActive:         f.IsActive,
		HasBusinessClass: f.HasBusinessClass,
		HasComfortClass:  f.HasComfortClass,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func (d *CharterFlightDate) ToResponse() FlightDateResponse {
	return FlightDateResponse{
		Date:       d.Date,
		SeatsTotal: d.SeatsTotal,
		SeatsLeft:  d.SeatsLeft,
	}
}
