package bookings

import (
	"context"
	"math"
	"strings"

	"travelly/internal/flights"
	"travelly/internal/users"
	"travelly/pkg/apperr"
	"travelly/pkg/logger"

	"github.com/google/uuid"
)

// Actor identifies who is performing an operation. Clients only see and
// create their own bookings; staff act on any booking.
type Actor struct {
	UserID string
	Role   users.Role
}

func (a Actor) isStaff() bool {
	return a.Role.IsStaff()
}

// Notifier receives booking lifecycle events after the owning transaction
// has committed. Implementations must not fail the request path.
type Notifier interface {
	BookingStatusChanged(ctx context.Context, bookingID, publicID, from, to string)
}

type Service interface {
	CreateBooking(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingResponse, error)
	UpdateBookingStatus(ctx context.Context, ref string, req UpdateStatusRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, actor Actor, ref string) (*BookingResponse, error)
	ListBookings(ctx context.Context, actor Actor, req BookingListRequest) (*PaginatedBookings, error)
}

type service struct {
	repo       Repository
	flightRepo flights.Repository
	notifier   Notifier
	log        *logger.Logger
}

func NewService(repo Repository, flightRepo flights.Repository, notifier Notifier) Service {
	return &service{
		repo:       repo,
		flightRepo: flightRepo,
		notifier:   notifier,
		log:        logger.GetDefault(),
	}
}

// CreateBooking resolves the owner and flight, then reserves seats and
// persists the booking atomically. A client may not book on behalf of
// another user.
func (s *service) CreateBooking(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingResponse, error) {
	ownerID, err := s.resolveOwner(actor, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Adults < 1 || req.Children < 0 {
		return nil, apperr.Invalidf("booking needs at least one adult and a non-negative child count")
	}

	dateFrom, err := flights.ParseDate(req.DateFrom)
	if err != nil {
		return nil, apperr.Invalidf("invalid date_from: %s", req.DateFrom)
	}
	dateTo, err := flights.ParseDate(req.DateTo)
	if err != nil {
		return nil, apperr.Invalidf("invalid date_to: %s", req.DateTo)
	}
	if dateTo.Before(dateFrom) {
		return nil, apperr.Invalidf("date_to %s precedes date_from %s", req.DateTo, req.DateFrom)
	}

	flight, err := s.flightRepo.GetByRef(ctx, strings.TrimSpace(req.FlightID))
	if err != nil {
		return nil, err
	}

	booking := &CharterBooking{
		UserID:   ownerID,
		FlightID: flight.ID,
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Adults:   req.Adults,
		Children: req.Children,
		Status:   StatusPending,
	}

	if err := s.repo.CreateWithReservation(ctx, booking); err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.PublicID, flight.PublicID, ownerID.String())

	full, err := s.repo.GetByRef(ctx, booking.ID.String())
	if err != nil {
		// The booking committed; fall back to the sparse row.
		resp := booking.ToResponse()
		return &resp, nil
	}
	resp := full.ToResponse()
	return &resp, nil
}

// UpdateBookingStatus transitions the booking and, when the change crossed
// the CANCELLED boundary, the ledger with it. The notifier fires only after
// the transaction committed and only when the status actually changed.
func (s *service) UpdateBookingStatus(ctx context.Context, ref string, req UpdateStatusRequest) (*BookingResponse, error) {
	if !IsValidStatus(req.Status) {
		return nil, apperr.Invalidf("unknown status %q", req.Status)
	}
	newStatus := Status(req.Status)

	booking, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	updated, previous, err := s.repo.UpdateStatusWithLedger(ctx, booking.ID, newStatus)
	if err != nil {
		return nil, err
	}

	if previous != updated.Status {
		s.log.LogBookingStatusChanged(ctx, updated.PublicID, string(previous), string(updated.Status))
		if s.notifier != nil {
			s.notifier.BookingStatusChanged(ctx, updated.ID.String(), updated.PublicID, string(previous), string(updated.Status))
		}
	}

	full, err := s.repo.GetByRef(ctx, updated.ID.String())
	if err != nil {
		resp := updated.ToResponse()
		return &resp, nil
	}
	resp := full.ToResponse()
	return &resp, nil
}

// GetBooking fetches one booking. Clients get a not-found answer for
// bookings they do not own rather than a forbidden one.
func (s *service) GetBooking(ctx context.Context, actor Actor, ref string) (*BookingResponse, error) {
	booking, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	if !actor.isStaff() && booking.UserID.String() != actor.UserID {
		return nil, apperr.NotFoundf("booking %s not found", ref)
	}

	resp := booking.ToResponse()
	return &resp, nil
}

// ListBookings returns a filtered page. Client scope is pinned to the
// actor's own bookings no matter what the filters claim.
func (s *service) ListBookings(ctx context.Context, actor Actor, req BookingListRequest) (*PaginatedBookings, error) {
	query, err := s.buildListQuery(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	bookings, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, bookings[i].ToResponse())
	}

	return &PaginatedBookings{
		Bookings:   responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}, nil
}

func (s *service) resolveOwner(actor Actor, requested *string) (uuid.UUID, error) {
	actorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return uuid.Nil, apperr.Invalidf("invalid actor id")
	}

	if requested == nil || *requested == "" {
		return actorID, nil
	}

	ownerID, err := uuid.Parse(*requested)
	if err != nil {
		return uuid.Nil, apperr.Invalidf("invalid user_id")
	}
	if ownerID != actorID && !actor.isStaff() {
		return uuid.Nil, apperr.Invalidf("clients may only book for themselves")
	}
	return ownerID, nil
}

func (s *service) buildListQuery(ctx context.Context, actor Actor, req BookingListRequest) (BookingListQuery, error) {
	query := BookingListQuery{
		Page:   req.Page,
		Limit:  req.Limit,
		Search: strings.TrimSpace(req.Search),
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	if actor.isStaff() {
		if req.UserID != "" {
			id, err := uuid.Parse(req.UserID)
			if err != nil {
				return BookingListQuery{}, apperr.Invalidf("invalid user_id filter")
			}
			query.UserID = &id
		}
	} else {
		id, err := uuid.Parse(actor.UserID)
		if err != nil {
			return BookingListQuery{}, apperr.Invalidf("invalid actor id")
		}
		query.UserID = &id
		query.Search = ""
	}

	if req.FlightID != "" {
		flight, err := s.flightRepo.GetByRef(ctx, strings.TrimSpace(req.FlightID))
		if err != nil {
			return BookingListQuery{}, err
		}
		query.FlightID = &flight.ID
	}

	if req.Status != "" {
		if !IsValidStatus(req.Status) {
			return BookingListQuery{}, apperr.Invalidf("unknown status %q", req.Status)
		}
		status := Status(req.Status)
		query.Status = &status
	}

	if req.DateFrom != "" {
		dateFrom, err := flights.ParseDate(req.DateFrom)
		if err != nil {
			return BookingListQuery{}, apperr.Invalidf("invalid date_from: %s", req.DateFrom)
		}
		query.DateFrom = &dateFrom
	}
	if req.DateTo != "" {
		dateTo, err := flights.ParseDate(req.DateTo)
		if err != nil {
			return BookingListQuery{}, apperr.Invalidf("invalid date_to: %s", req.DateTo)
		}
		query.DateTo = &dateTo
	}

	return query, nil
}
