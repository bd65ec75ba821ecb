package flights

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"travelly/pkg/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestCreatePersistsFlightAndLedger(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewRepository(gormDB)

	flight := &CharterFlight{
		From:       "Kyiv",
		To:         "Antalya",
		DateFrom:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		DateTo:     time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		WeekDays:   []int{1},
		SeatsTotal: 180,
		IsActive:   true,
	}
	calendar := []time.Time{
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	// Ids are allocated against the issuance year, not the travel year.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO charter_id_counters")).
		WithArgs("FLIGHT", time.Now().UTC().Year()).
		WillReturnRows(sqlmock.NewRows([]string{"current"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "charter_flights"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "charter_flight_dates"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), flight, calendar)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("VIVA-AVFL-%d-00003", time.Now().UTC().Year()), flight.PublicID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ledgerRows(flightID uuid.UUID, dates ...time.Time) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "flight_id", "date", "seats_total", "seats_left"})
	for _, d := range dates {
		rows.AddRow(uuid.New(), flightID, d, 180, 180)
	}
	return rows
}

func TestUpdateRefusesToDropDatesWithLiveBookings(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewRepository(gormDB)

	flightID := uuid.New()
	kept := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	dropped := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "charter_flights" WHERE id = $1`)).
		WithArgs(flightID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "seats_total"}).
			AddRow(flightID, "VIVA-AVFL-2025-00004", 180))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "charter_flight_dates" WHERE flight_id = $1`)).
		WithArgs(flightID).
		WillReturnRows(ledgerRows(flightID, kept, dropped))
	// One active booking still references the dropped date.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "charter_bookings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), flightID, nil, []time.Time{kept}, 180, false)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRescalesLedgerPreservingBookedSeats(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewRepository(gormDB)

	flightID := uuid.New()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "charter_flights" WHERE id = $1`)).
		WithArgs(flightID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "seats_total"}).
			AddRow(flightID, "VIVA-AVFL-2025-00005", 180))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "charter_flights" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "charter_flight_dates" WHERE flight_id = $1`)).
		WithArgs(flightID).
		WillReturnRows(ledgerRows(flightID, day))
	// The rescale keeps booked seats: seats_left = new_total - booked.
	mock.ExpectExec(regexp.QuoteMeta("SET seats_left = GREATEST(0, $1 - (seats_total - seats_left))")).
		WithArgs(200, 200, flightID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "charter_flights" WHERE id = $1`)).
		WithArgs(flightID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "seats_total"}).
			AddRow(flightID, "VIVA-AVFL-2025-00005", 200))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), flightID,
		map[string]interface{}{"seats_total": 200},
		[]time.Time{day}, 200, true)
	require.NoError(t, err)
	assert.Equal(t, 200, updated.SeatsTotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRefResolvesPublicID(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "charter_flights" WHERE public_id = $1`)).
		WithArgs("VIVA-AVFL-2025-00001", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id"}).
			AddRow(uuid.New(), "VIVA-AVFL-2025-00001"))

	flight, err := repo.GetByRef(context.Background(), "VIVA-AVFL-2025-00001")
	require.NoError(t, err)
	assert.Equal(t, "VIVA-AVFL-2025-00001", flight.PublicID)
}

func TestGetByRefNotFound(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "charter_flights" WHERE public_id = $1`)).
		WithArgs("VIVA-AVFL-2099-99999", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByRef(context.Background(), "VIVA-AVFL-2099-99999")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
