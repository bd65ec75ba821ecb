package bookings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"travelly/internal/flights"
	"travelly/internal/sequence"
	"travelly/internal/shared/dberr"
	"travelly/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateWithReservation(ctx context.Context, booking *CharterBooking) error
	UpdateStatusWithLedger(ctx context.Context, bookingID uuid.UUID, newStatus Status) (*CharterBooking, Status, error)
	GetByRef(ctx context.Context, ref string) (*CharterBooking, error)
	GetAll(ctx context.Context, query BookingListQuery) ([]CharterBooking, int64, error)
}

// BookingListQuery is the parsed filter set for booking listings.
type BookingListQuery struct {
	Page     int
	Limit    int
	UserID   *uuid.UUID
	FlightID *uuid.UUID
	Status   *Status
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

var serializableTx = &sql.TxOptions{Isolation: sql.LevelSerializable}

const dateLayout = "2006-01-02"

// ledgerLeg is one conditional decrement against a single ledger row. A
// same-day round trip collapses both legs onto one row and doubles the
// seat count, so the availability check sees the full demand at once.
type ledgerLeg struct {
	date  time.Time
	seats int
}

func reservationLegs(b *CharterBooking) []ledgerLeg {
	pax := b.Pax()
	if b.IsSameDayTrip() {
		return []ledgerLeg{{date: b.DateFrom, seats: 2 * pax}}
	}
	return []ledgerLeg{
		{date: b.DateFrom, seats: pax},
		{date: b.DateTo, seats: pax},
	}
}

// reserveLeg atomically takes seats from one ledger row. The decrement and
// the availability check are a single statement; zero rows affected means
// either the date is not scheduled or not enough seats remain, and both
// read as the same answer: no seats available there. Callers may retry
// with different dates.
func reserveLeg(tx *gorm.DB, flightID uuid.UUID, leg ledgerLeg) error {
	day := leg.date.UTC().Format(dateLayout)

	res := tx.Exec(`
		UPDATE charter_flight_dates
		SET seats_left = seats_left - ?, updated_at = NOW()
		WHERE flight_id = ? AND date = ? AND seats_left >= ?
	`, leg.seats, flightID, day, leg.seats)
	if res.Error != nil {
		return fmt.Errorf("failed to reserve seats for %s: %w", day, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.CapacityExceededf("no seats available on %s for %d passengers", day, leg.seats)
	}
	return nil
}

// releaseLeg returns seats to one ledger row, clamped at the row's capacity
// so repeated or raced releases can never overfill a date.
func releaseLeg(tx *gorm.DB, flightID uuid.UUID, leg ledgerLeg) error {
	day := leg.date.UTC().Format(dateLayout)

	err := tx.Exec(`
		UPDATE charter_flight_dates
		SET seats_left = LEAST(seats_total, seats_left + ?), updated_at = NOW()
		WHERE flight_id = ? AND date = ?
	`, leg.seats, flightID, day).Error
	if err != nil {
		return fmt.Errorf("failed to release seats for %s: %w", day, err)
	}
	return nil
}

// CreateWithReservation inserts the booking and takes its seats in one
// serializable transaction. Either every leg reserves or nothing persists.
func (r *repository) CreateWithReservation(ctx context.Context, booking *CharterBooking) error {
	// A non-positive seat count must never reach the ledger arithmetic: a
	// negative decrement would pass the seats_left >= n predicate and add
	// seats back.
	if booking.Adults < 1 || booking.Children < 0 || booking.Pax() <= 0 {
		return apperr.Invalidf("booking must reserve at least one seat")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flight flights.CharterFlight
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", booking.FlightID).
			First(&flight).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFoundf("flight %s not found", booking.FlightID)
			}
			return err
		}
		if !flight.IsActive {
			return apperr.Invalidf("flight %s is not open for booking", flight.PublicID)
		}

		from := flights.NormalizeDate(booking.DateFrom)
		to := flights.NormalizeDate(booking.DateTo)
		if to.Before(from) {
			return apperr.Invalidf("return date precedes departure date")
		}
		if from.Before(flights.NormalizeDate(flight.DateFrom)) || to.After(flights.NormalizeDate(flight.DateTo)) {
			return apperr.Invalidf("booking dates fall outside the flight validity window")
		}
		booking.DateFrom = from
		booking.DateTo = to

		for _, leg := range reservationLegs(booking) {
			if err := reserveLeg(tx, booking.FlightID, leg); err != nil {
				return err
			}
		}

		// Public ids are scoped to the year of issuance, not of travel.
		year := time.Now().UTC().Year()
		seq, err := sequence.Next(tx, sequence.KindBooking, year)
		if err != nil {
			return err
		}
		booking.PublicID = sequence.PublicID(sequence.KindBooking, year, seq)
		if booking.Status == "" {
			booking.Status = StatusPending
		}

		if err := tx.Omit("User", "Flight").Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	}, serializableTx)

	return translateTxError(err)
}

// UpdateStatusWithLedger moves the booking to newStatus and adjusts the seat
// ledger when the transition crosses the CANCELLED boundary. Re-activating a
// cancelled booking must pass the same capacity check as a fresh
// reservation. Returns the updated booking and the prior status.
func (r *repository) UpdateStatusWithLedger(ctx context.Context, bookingID uuid.UUID, newStatus Status) (*CharterBooking, Status, error) {
	var updated CharterBooking
	var previous Status

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking CharterBooking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).
			First(&booking).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFoundf("booking %s not found", bookingID)
			}
			return err
		}

		previous = booking.Status
		if previous == newStatus {
			updated = booking
			return nil
		}

		switch {
		case EntersCancelled(previous, newStatus):
			for _, leg := range reservationLegs(&booking) {
				if err := releaseLeg(tx, booking.FlightID, leg); err != nil {
					return err
				}
			}
		case LeavesCancelled(previous, newStatus):
			for _, leg := range reservationLegs(&booking) {
				if err := reserveLeg(tx, booking.FlightID, leg); err != nil {
					return err
				}
			}
		}

		err = tx.Model(&CharterBooking{}).
			Where("id = ?", bookingID).
			Update("status", newStatus).Error
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}

		return tx.Where("id = ?", bookingID).First(&updated).Error
	}, serializableTx)

	if err != nil {
		return nil, previous, translateTxError(err)
	}
	return &updated, previous, nil
}

// bookingRefClause resolves a booking reference that may be either the
// internal UUID or the public VIVA-AVBOOK identifier.
func bookingRefClause(db *gorm.DB, ref string) *gorm.DB {
	if id, err := uuid.Parse(ref); err == nil {
		return db.Where("charter_bookings.id = ?", id)
	}
	return db.Where("charter_bookings.public_id = ?", ref)
}

func (r *repository) GetByRef(ctx context.Context, ref string) (*CharterBooking, error) {
	var booking CharterBooking
	err := bookingRefClause(r.db.WithContext(ctx), ref).
		Preload("User").
		Preload("Flight").
		First(&booking).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("booking %s not found", ref)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetAll(ctx context.Context, query BookingListQuery) ([]CharterBooking, int64, error) {
	var bookings []CharterBooking
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&CharterBooking{})

	if query.UserID != nil {
		db = db.Where("charter_bookings.user_id = ?", *query.UserID)
	}
	if query.FlightID != nil {
		db = db.Where("charter_bookings.flight_id = ?", *query.FlightID)
	}
	if query.Status != nil {
		db = db.Where("charter_bookings.status = ?", *query.Status)
	}
	if query.DateFrom != nil {
		db = db.Where("charter_bookings.date_from >= ?", query.DateFrom.Format(dateLayout))
	}
	if query.DateTo != nil {
		db = db.Where("charter_bookings.date_to <= ?", query.DateTo.Format(dateLayout))
	}

	if query.Search != "" {
		term := "%" + strings.TrimSpace(query.Search) + "%"
		db = db.Joins("LEFT JOIN users ON users.id = charter_bookings.user_id").
			Joins("LEFT JOIN charter_flights ON charter_flights.id = charter_bookings.flight_id").
			Where(`charter_bookings.public_id ILIKE ?
				OR users.name ILIKE ? OR users.email ILIKE ?
				OR charter_flights.public_id ILIKE ?
				OR charter_flights.from_city ILIKE ? OR charter_flights.to_city ILIKE ?`,
				term, term, term, term, term, term)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	err := db.Preload("User").
		Preload("Flight").
		Order("charter_bookings.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return bookings, totalCount, nil
}

// translateTxError maps low-level Postgres failures onto the error taxonomy.
func translateTxError(err error) error {
	switch {
	case err == nil:
		return nil
	case dberr.IsSerializationFailure(err):
		return apperr.Conflictf("transaction serialization conflict, retry")
	case dberr.IsUniqueViolation(err):
		return apperr.Conflictf("duplicate record")
	default:
		return err
	}
}
