package bookings

import (
	"context"
	"testing"
	"time"

	"travelly/internal/flights"
	"travelly/internal/users"
	"travelly/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) CreateWithReservation(ctx context.Context, booking *CharterBooking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockBookingRepo) UpdateStatusWithLedger(ctx context.Context, bookingID uuid.UUID, newStatus Status) (*CharterBooking, Status, error) {
	args := m.Called(ctx, bookingID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Get(1).(Status), args.Error(2)
	}
	return args.Get(0).(*CharterBooking), args.Get(1).(Status), args.Error(2)
}

func (m *mockBookingRepo) GetByRef(ctx context.Context, ref string) (*CharterBooking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CharterBooking), args.Error(1)
}

func (m *mockBookingRepo) GetAll(ctx context.Context, query BookingListQuery) ([]CharterBooking, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]CharterBooking), args.Get(1).(int64), args.Error(2)
}

type mockFlightRepo struct {
	mock.Mock
}

func (m *mockFlightRepo) Create(ctx context.Context, flight *flights.CharterFlight, calendar []time.Time) error {
	args := m.Called(ctx, flight, calendar)
	return args.Error(0)
}

func (m *mockFlightRepo) Update(ctx context.Context, flightID uuid.UUID, updates map[string]interface{}, calendar []time.Time, seatsTotal int, totalChanged bool) (*flights.CharterFlight, error) {
	args := m.Called(ctx, flightID, updates, calendar, seatsTotal, totalChanged)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.CharterFlight), args.Error(1)
}

func (m *mockFlightRepo) GetByRef(ctx context.Context, ref string) (*flights.CharterFlight, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.CharterFlight), args.Error(1)
}

func (m *mockFlightRepo) GetAll(ctx context.Context, query flights.FlightListQuery) ([]flights.CharterFlight, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]flights.CharterFlight), args.Get(1).(int64), args.Error(2)
}

func (m *mockFlightRepo) GetLedger(ctx context.Context, flightID uuid.UUID) ([]flights.CharterFlightDate, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flights.CharterFlightDate), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookingStatusChanged(ctx context.Context, bookingID, publicID, from, to string) {
	m.Called(ctx, bookingID, publicID, from, to)
}

func clientActor() Actor {
	return Actor{UserID: uuid.New().String(), Role: users.RoleClient}
}

func managerActor() Actor {
	return Actor{UserID: uuid.New().String(), Role: users.RoleManager}
}

func activeFlight() *flights.CharterFlight {
	return &flights.CharterFlight{
		ID:       uuid.New(),
		PublicID: "VIVA-AVFL-2025-00001",
		IsActive: true,
	}
}

func TestCreateBookingClientBooksForSelf(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	actor := clientActor()
	flight := activeFlight()

	flightRepo.On("GetByRef", mock.Anything, flight.PublicID).Return(flight, nil)
	repo.On("CreateWithReservation", mock.Anything, mock.MatchedBy(func(b *CharterBooking) bool {
		return b.UserID.String() == actor.UserID && b.FlightID == flight.ID && b.Status == StatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*CharterBooking).ID = uuid.New()
	}).Return(nil)
	repo.On("GetByRef", mock.Anything, mock.Anything).Return(nil, apperr.NotFoundf("gone"))

	resp, err := svc.CreateBooking(context.Background(), actor, CreateBookingRequest{
		FlightID: flight.PublicID,
		DateFrom: "2025-06-02",
		DateTo:   "2025-06-06",
		Adults:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, resp.UserID)
	repo.AssertExpectations(t)
}

func TestCreateBookingClientCannotBookForOthers(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	other := uuid.New().String()
	_, err := svc.CreateBooking(context.Background(), clientActor(), CreateBookingRequest{
		UserID:   &other,
		FlightID: "VIVA-AVFL-2025-00001",
		DateFrom: "2025-06-02",
		DateTo:   "2025-06-06",
		Adults:   1,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	repo.AssertNotCalled(t, "CreateWithReservation")
}

func TestCreateBookingStaffBooksOnBehalf(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	flight := activeFlight()
	client := uuid.New().String()

	flightRepo.On("GetByRef", mock.Anything, flight.PublicID).Return(flight, nil)
	repo.On("CreateWithReservation", mock.Anything, mock.MatchedBy(func(b *CharterBooking) bool {
		return b.UserID.String() == client
	})).Return(nil)
	repo.On("GetByRef", mock.Anything, mock.Anything).Return(nil, apperr.NotFoundf("gone"))

	_, err := svc.CreateBooking(context.Background(), managerActor(), CreateBookingRequest{
		UserID:   &client,
		FlightID: flight.PublicID,
		DateFrom: "2025-06-02",
		DateTo:   "2025-06-06",
		Adults:   1,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateBookingRejectsNonPositivePax(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	cases := []struct {
		adults   int
		children int
	}{
		{0, 0},
		{0, 2},
		{-1, 1},
		{1, -1},
	}

	for _, tc := range cases {
		_, err := svc.CreateBooking(context.Background(), clientActor(), CreateBookingRequest{
			FlightID: "VIVA-AVFL-2025-00001",
			DateFrom: "2025-06-02",
			DateTo:   "2025-06-06",
			Adults:   tc.adults,
			Children: tc.children,
		})
		assert.ErrorIs(t, err, apperr.ErrInvalid, "adults=%d children=%d", tc.adults, tc.children)
	}
	repo.AssertNotCalled(t, "CreateWithReservation")
}

func TestCreateBookingRejectsInvertedDates(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	_, err := svc.CreateBooking(context.Background(), clientActor(), CreateBookingRequest{
		FlightID: "VIVA-AVFL-2025-00001",
		DateFrom: "2025-06-06",
		DateTo:   "2025-06-02",
		Adults:   1,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdateStatusNotifiesAfterChange(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	notifier := new(mockNotifier)
	svc := NewService(repo, flightRepo, notifier)

	booking := &CharterBooking{
		ID:       uuid.New(),
		PublicID: "VIVA-AVBOOK-2025-00005",
		UserID:   uuid.New(),
		FlightID: uuid.New(),
		Status:   StatusPending,
	}
	confirmed := *booking
	confirmed.Status = StatusConfirmed

	repo.On("GetByRef", mock.Anything, booking.PublicID).Return(booking, nil)
	repo.On("UpdateStatusWithLedger", mock.Anything, booking.ID, StatusConfirmed).
		Return(&confirmed, StatusPending, nil)
	repo.On("GetByRef", mock.Anything, booking.ID.String()).Return(&confirmed, nil)
	notifier.On("BookingStatusChanged", mock.Anything, booking.ID.String(), booking.PublicID, "PENDING", "CONFIRMED").Once()

	resp, err := svc.UpdateBookingStatus(context.Background(), booking.PublicID, UpdateStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, resp.Status)
	notifier.AssertExpectations(t)
}

func TestUpdateStatusNoopDoesNotNotify(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	notifier := new(mockNotifier)
	svc := NewService(repo, flightRepo, notifier)

	booking := &CharterBooking{
		ID:       uuid.New(),
		PublicID: "VIVA-AVBOOK-2025-00006",
		Status:   StatusConfirmed,
	}

	repo.On("GetByRef", mock.Anything, booking.PublicID).Return(booking, nil)
	repo.On("UpdateStatusWithLedger", mock.Anything, booking.ID, StatusConfirmed).
		Return(booking, StatusConfirmed, nil)
	repo.On("GetByRef", mock.Anything, booking.ID.String()).Return(booking, nil)

	_, err := svc.UpdateBookingStatus(context.Background(), booking.PublicID, UpdateStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)
	notifier.AssertNotCalled(t, "BookingStatusChanged")
}

func TestUpdateStatusReservationFailureDoesNotNotify(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	notifier := new(mockNotifier)
	svc := NewService(repo, flightRepo, notifier)

	booking := &CharterBooking{
		ID:       uuid.New(),
		PublicID: "VIVA-AVBOOK-2025-00007",
		Status:   StatusCancelled,
	}

	repo.On("GetByRef", mock.Anything, booking.PublicID).Return(booking, nil)
	repo.On("UpdateStatusWithLedger", mock.Anything, booking.ID, StatusPending).
		Return(nil, StatusCancelled, apperr.CapacityExceededf("no seats"))

	_, err := svc.UpdateBookingStatus(context.Background(), booking.PublicID, UpdateStatusRequest{Status: "PENDING"})
	assert.ErrorIs(t, err, apperr.ErrCapacityExceeded)
	notifier.AssertNotCalled(t, "BookingStatusChanged")
}

func TestGetBookingHidesForeignBookingFromClient(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	booking := &CharterBooking{
		ID:       uuid.New(),
		PublicID: "VIVA-AVBOOK-2025-00008",
		UserID:   uuid.New(),
	}
	repo.On("GetByRef", mock.Anything, booking.PublicID).Return(booking, nil)

	_, err := svc.GetBooking(context.Background(), clientActor(), booking.PublicID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	resp, err := svc.GetBooking(context.Background(), managerActor(), booking.PublicID)
	require.NoError(t, err)
	assert.Equal(t, booking.PublicID, resp.PublicID)
}

func TestListBookingsClientScopePinned(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	actor := clientActor()
	actorID := uuid.MustParse(actor.UserID)

	repo.On("GetAll", mock.Anything, mock.MatchedBy(func(q BookingListQuery) bool {
		return q.UserID != nil && *q.UserID == actorID
	})).Return([]CharterBooking{}, int64(0), nil)

	// A client asking for someone else's bookings still only sees their own.
	_, err := svc.ListBookings(context.Background(), actor, BookingListRequest{UserID: uuid.New().String()})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListBookingsStaffFiltersByFlight(t *testing.T) {
	repo := new(mockBookingRepo)
	flightRepo := new(mockFlightRepo)
	svc := NewService(repo, flightRepo, nil)

	flight := activeFlight()
	flightRepo.On("GetByRef", mock.Anything, flight.PublicID).Return(flight, nil)
	repo.On("GetAll", mock.Anything, mock.MatchedBy(func(q BookingListQuery) bool {
		return q.FlightID != nil && *q.FlightID == flight.ID && q.UserID == nil
	})).Return([]CharterBooking{}, int64(0), nil)

	_, err := svc.ListBookings(context.Background(), managerActor(), BookingListRequest{FlightID: flight.PublicID})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
