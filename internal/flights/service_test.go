package flights

import (
	"context"
	"testing"
	"time"

	"travelly/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, flight *CharterFlight, calendar []time.Time) error {
	args := m.Called(ctx, flight, calendar)
	return args.Error(0)
}

func (m *mockRepository) Update(ctx context.Context, flightID uuid.UUID, updates map[string]interface{}, calendar []time.Time, seatsTotal int, totalChanged bool) (*CharterFlight, error) {
	args := m.Called(ctx, flightID, updates, calendar, seatsTotal, totalChanged)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CharterFlight), args.Error(1)
}

func (m *mockRepository) GetByRef(ctx context.Context, ref string) (*CharterFlight, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CharterFlight), args.Error(1)
}

func (m *mockRepository) GetAll(ctx context.Context, query FlightListQuery) ([]CharterFlight, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]CharterFlight), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) GetLedger(ctx context.Context, flightID uuid.UUID) ([]CharterFlightDate, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CharterFlightDate), args.Error(1)
}

func validCreateRequest() CreateFlightRequest {
	return CreateFlightRequest{
		From:       "Kyiv",
		To:         "Antalya",
		DateFrom:   "2025-06-02",
		DateTo:     "2025-06-15",
		WeekDays:   []int{1, 3, 5},
		Categories: []string{"beach", "family"},
		SeatsTotal: 180,
	}
}

func TestCreateFlightExpandsCalendar(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *CharterFlight) bool {
		return f.From == "Kyiv" && f.To == "Antalya" && f.SeatsTotal == 180 && f.IsActive
	}), mock.MatchedBy(func(calendar []time.Time) bool {
		return len(calendar) == 6
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*CharterFlight).PublicID = "VIVA-AVFL-2025-00001"
	}).Return(nil)

	resp, err := svc.CreateFlight(context.Background(), nil, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "VIVA-AVFL-2025-00001", resp.PublicID)
	repo.AssertExpectations(t)
}

func TestCreateFlightRejectsInvertedWindow(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	req := validCreateRequest()
	req.DateFrom = "2025-06-15"
	req.DateTo = "2025-06-02"

	_, err := svc.CreateFlight(context.Background(), nil, req)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateFlightRejectsEmptyCalendar(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	// Single Wednesday window, pattern asks only for Mondays.
	req := validCreateRequest()
	req.DateFrom = "2025-06-04"
	req.DateTo = "2025-06-04"
	req.WeekDays = []int{1}

	_, err := svc.CreateFlight(context.Background(), nil, req)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestCreateFlightRejectsUnknownCategory(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	req := validCreateRequest()
	req.Categories = []string{"beach", "submarine"}

	_, err := svc.CreateFlight(context.Background(), nil, req)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestCreateFlightTrimsWhitespace(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *CharterFlight) bool {
		return f.From == "Kyiv" && f.To == "Antalya"
	}), mock.Anything).Return(nil)

	req := validCreateRequest()
	req.From = "  Kyiv "
	req.To = " Antalya  "

	_, err := svc.CreateFlight(context.Background(), nil, req)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateFlightMarksCapacityChange(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	existing := &CharterFlight{
		ID:         uuid.New(),
		PublicID:   "VIVA-AVFL-2025-00007",
		From:       "Kyiv",
		To:         "Antalya",
		DateFrom:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		DateTo:     time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		WeekDays:   []int{1, 3, 5},
		SeatsTotal: 180,
		IsActive:   true,
	}

	repo.On("GetByRef", mock.Anything, existing.PublicID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing.ID, mock.Anything, mock.Anything, 200, true).
		Return(&CharterFlight{ID: existing.ID, PublicID: existing.PublicID, SeatsTotal: 200, WeekDays: existing.WeekDays}, nil)

	newTotal := 200
	resp, err := svc.UpdateFlight(context.Background(), existing.PublicID, UpdateFlightRequest{SeatsTotal: &newTotal})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.SeatsTotal)
	repo.AssertExpectations(t)
}

func TestUpdateFlightSameCapacityNotRescaled(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	existing := &CharterFlight{
		ID:         uuid.New(),
		PublicID:   "VIVA-AVFL-2025-00008",
		DateFrom:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		DateTo:     time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		WeekDays:   []int{1},
		SeatsTotal: 180,
	}

	repo.On("GetByRef", mock.Anything, existing.PublicID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing.ID, mock.Anything, mock.Anything, 180, false).
		Return(existing, nil)

	sameTotal := 180
	_, err := svc.UpdateFlight(context.Background(), existing.PublicID, UpdateFlightRequest{SeatsTotal: &sameTotal})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetFlightPublicHidesInactive(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	inactive := &CharterFlight{ID: uuid.New(), PublicID: "VIVA-AVFL-2025-00009", IsActive: false}
	repo.On("GetByRef", mock.Anything, inactive.PublicID).Return(inactive, nil)

	_, err := svc.GetFlight(context.Background(), inactive.PublicID, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	resp, err := svc.GetFlight(context.Background(), inactive.PublicID, false)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}

func TestListFlightsPublicForcesActive(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	inactive := false
	repo.On("GetAll", mock.Anything, mock.MatchedBy(func(q FlightListQuery) bool {
		return q.IsActive != nil && *q.IsActive
	})).Return([]CharterFlight{}, int64(0), nil)

	// Even an explicit is_active=false filter is overridden in public scope.
	_, err := svc.ListFlights(context.Background(), FlightListRequest{IsActive: &inactive}, true)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListFlightsRejectsBadCategoryFilter(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	_, err := svc.ListFlights(context.Background(), FlightListRequest{Categories: "beach,unknown"}, true)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	repo.AssertNotCalled(t, "GetAll")
}

func TestGetFlightDatesOrdersLedger(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	flight := &CharterFlight{ID: uuid.New(), PublicID: "VIVA-AVFL-2025-00010", IsActive: true}
	repo.On("GetByRef", mock.Anything, flight.PublicID).Return(flight, nil)
	repo.On("GetLedger", mock.Anything, flight.ID).Return([]CharterFlightDate{
		{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), SeatsTotal: 180, SeatsLeft: 175},
		{Date: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), SeatsTotal: 180, SeatsLeft: 180},
	}, nil)

	dates, err := svc.GetFlightDates(context.Background(), flight.PublicID)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, 175, dates[0].SeatsLeft)
}
