package flights

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"travelly/internal/sequence"
	"travelly/internal/shared/dberr"
	"travelly/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, flight *CharterFlight, calendar []time.Time) error
	Update(ctx context.Context, flightID uuid.UUID, updates map[string]interface{}, calendar []time.Time, seatsTotal int, totalChanged bool) (*CharterFlight, error)
	GetByRef(ctx context.Context, ref string) (*CharterFlight, error)
	GetAll(ctx context.Context, query FlightListQuery) ([]CharterFlight, int64, error)
	GetLedger(ctx context.Context, flightID uuid.UUID) ([]CharterFlightDate, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

var serializableTx = &sql.TxOptions{Isolation: sql.LevelSerializable}

// flightRefClause resolves a flight reference that may be either the internal
// UUID or the public VIVA-AVFL identifier.
func flightRefClause(db *gorm.DB, ref string) *gorm.DB {
	if id, err := uuid.Parse(ref); err == nil {
		return db.Where("id = ?", id)
	}
	return db.Where("public_id = ?", ref)
}

// Create inserts the flight and materializes its seat ledger, one row per
// calendar date, all in one serializable transaction. The public identifier
// is allocated from the year-scoped counter inside the same transaction.
func (r *repository) Create(ctx context.Context, flight *CharterFlight, calendar []time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Public ids are scoped to the year of issuance, not of travel.
		year := time.Now().UTC().Year()
		seq, err := sequence.Next(tx, sequence.KindFlight, year)
		if err != nil {
			return err
		}
		flight.PublicID = sequence.PublicID(sequence.KindFlight, year, seq)

		if err := tx.Create(flight).Error; err != nil {
			return fmt.Errorf("failed to create flight: %w", err)
		}

		ledger := make([]CharterFlightDate, 0, len(calendar))
		for _, date := range calendar {
			ledger = append(ledger, CharterFlightDate{
				FlightID:   flight.ID,
				Date:       date,
				SeatsTotal: flight.SeatsTotal,
				SeatsLeft:  flight.SeatsTotal,
			})
		}
		if len(ledger) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "flight_id"}, {Name: "date"}},
				DoNothing: true,
			}).Create(&ledger).Error; err != nil {
				return fmt.Errorf("failed to create flight ledger: %w", err)
			}
		}

		return nil
	}, serializableTx)

	return translateTxError(err)
}

// Update applies the field changes and reconciles the ledger against the new
// calendar. Dates that drop out of the schedule are deleted, but only when no
// live booking references them. Surviving rows are rescaled with a single
// conditional statement that preserves the booked-seat count.
func (r *repository) Update(ctx context.Context, flightID uuid.UUID, updates map[string]interface{}, calendar []time.Time, seatsTotal int, totalChanged bool) (*CharterFlight, error) {
	var updated CharterFlight

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flight CharterFlight
		if err := tx.Where("id = ?", flightID).First(&flight).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFoundf("flight %s not found", flightID)
			}
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&CharterFlight{}).Where("id = ?", flightID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update flight: %w", err)
			}
		}

		var existing []CharterFlightDate
		if err := tx.Where("flight_id = ?", flightID).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load flight ledger: %w", err)
		}

		wanted := make(map[string]time.Time, len(calendar))
		for _, date := range calendar {
			wanted[DateKey(date)] = date
		}

		var removed []string
		for _, row := range existing {
			key := DateKey(row.Date)
			if _, keep := wanted[key]; keep {
				delete(wanted, key)
			} else {
				removed = append(removed, row.Date.UTC().Format(dateLayout))
			}
		}

		if len(removed) > 0 {
			// Schedule changes never strand a live booking. Dates that a
			// pending or confirmed booking references must stay bookable.
			var liveBookings int64
			err := tx.Table("charter_bookings").
				Where("flight_id = ? AND status <> ?", flightID, "CANCELLED").
				Where("date_from IN ? OR date_to IN ?", removed, removed).
				Count(&liveBookings).Error
			if err != nil {
				return fmt.Errorf("failed to check bookings on removed dates: %w", err)
			}
			if liveBookings > 0 {
				return apperr.Conflictf("cannot remove %d scheduled dates with %d active bookings", len(removed), liveBookings)
			}

			if err := tx.Where("flight_id = ? AND date IN ?", flightID, removed).
				Delete(&CharterFlightDate{}).Error; err != nil {
				return fmt.Errorf("failed to delete removed ledger dates: %w", err)
			}
		}

		if totalChanged {
			// seats_left = new_total - already_booked, floored at zero so an
			// oversold shrink never goes negative.
			err := tx.Exec(`
				UPDATE charter_flight_dates
				SET seats_left = GREATEST(0, ? - (seats_total - seats_left)),
				    seats_total = ?,
				    updated_at = NOW()
				WHERE flight_id = ?
			`, seatsTotal, seatsTotal, flightID).Error
			if err != nil {
				return fmt.Errorf("failed to rescale ledger capacity: %w", err)
			}
		}

		if len(wanted) > 0 {
			added := make([]CharterFlightDate, 0, len(wanted))
			for _, date := range wanted {
				added = append(added, CharterFlightDate{
					FlightID:   flightID,
					Date:       date,
					SeatsTotal: seatsTotal,
					SeatsLeft:  seatsTotal,
				})
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "flight_id"}, {Name: "date"}},
				DoNothing: true,
			}).Create(&added).Error; err != nil {
				return fmt.Errorf("failed to insert new ledger dates: %w", err)
			}
		}

		return tx.Where("id = ?", flightID).First(&updated).Error
	}, serializableTx)

	if err != nil {
		return nil, translateTxError(err)
	}
	return &updated, nil
}

func (r *repository) GetByRef(ctx context.Context, ref string) (*CharterFlight, error) {
	var flight CharterFlight
	err := flightRefClause(r.db.WithContext(ctx), ref).First(&flight).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("flight %s not found", ref)
		}
		return nil, err
	}
	return &flight, nil
}

func (r *repository) GetAll(ctx context.Context, query FlightListQuery) ([]CharterFlight, int64, error) {
	var flights []CharterFlight
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&CharterFlight{})

	if query.From != "" {
		db = db.Where("from_city ILIKE ?", "%"+query.From+"%")
	}
	if query.To != "" {
		db = db.Where("to_city ILIKE ?", "%"+query.To+"%")
	}

	if len(query.Categories) > 0 {
		// Contains-all semantics over the jsonb categories array.
		encoded, err := json.Marshal(query.Categories)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode category filter: %w", err)
		}
		db = db.Where("categories @> ?::jsonb", string(encoded))
	}

	if query.HasBusinessClass != nil {
		db = db.Where("has_business_class = ?", *query.HasBusinessClass)
	}
	if query.HasComfortClass != nil {
		db = db.Where("has_comfort_class = ?", *query.HasComfortClass)
	}
	if query.IsActive != nil {
		db = db.Where("is_active = ?", *query.IsActive)
	}

	if query.DateFrom != nil {
		db = db.Where("date_to >= ?", query.DateFrom.Format(dateLayout))
	}
	if query.DateTo != nil {
		db = db.Where("date_from <= ?", query.DateTo.Format(dateLayout))
	}

	if query.HasSeats {
		pax := query.Pax
		if pax < 1 {
			pax = 1
		}
		sub := strings.Builder{}
		sub.WriteString("EXISTS (SELECT 1 FROM charter_flight_dates d WHERE d.flight_id = charter_flights.id AND d.seats_left >= ?")
		args := []interface{}{pax}
		if query.DateFrom != nil {
			sub.WriteString(" AND d.date >= ?")
			args = append(args, query.DateFrom.Format(dateLayout))
		}
		if query.DateTo != nil {
			sub.WriteString(" AND d.date <= ?")
			args = append(args, query.DateTo.Format(dateLayout))
		}
		sub.WriteString(")")
		db = db.Where(sub.String(), args...)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count flights: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	err := db.Order("date_from ASC, public_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&flights).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch flights: %w", err)
	}

	return flights, totalCount, nil
}

func (r *repository) GetLedger(ctx context.Context, flightID uuid.UUID) ([]CharterFlightDate, error) {
	var dates []CharterFlightDate
	err := r.db.WithContext(ctx).
		Where("flight_id = ?", flightID).
		Order("date ASC").
		Find(&dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flight ledger: %w", err)
	}
	return dates, nil
}

// translateTxError maps low-level Postgres failures onto the error taxonomy.
// Serialization failures surface as retryable conflicts.
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
