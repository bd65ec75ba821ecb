package flights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"travelly/internal/shared/constants"
	"travelly/pkg/apperr"
	"travelly/pkg/cache"
	"travelly/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	CreateFlight(ctx context.Context, createdBy *uuid.UUID, req CreateFlightRequest) (*FlightResponse, error)
	UpdateFlight(ctx context.Context, ref string, req UpdateFlightRequest) (*FlightResponse, error)
	GetFlight(ctx context.Context, ref string, publicOnly bool) (*FlightResponse, error)
	GetFlightDates(ctx context.Context, ref string) ([]FlightDateResponse, error)
	ListFlights(ctx context.Context, req FlightListRequest, publicOnly bool) (*PaginatedFlights, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		log:  logger.GetDefault(),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return cache.ErrCacheMiss
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, ttl); err != nil {
		s.log.WithError(err).Warn("failed to cache flight data", "key", key)
	}
}

func (s *service) invalidateFlightCaches(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_FLIGHTS_ALL); err != nil {
		s.log.WithError(err).Warn("failed to invalidate flight caches")
	}
}

// CreateFlight validates and normalizes the definition, expands the weekly
// pattern into a calendar, and persists flight plus ledger atomically.
func (s *service) CreateFlight(ctx context.Context, createdBy *uuid.UUID, req CreateFlightRequest) (*FlightResponse, error) {
	dateFrom, err := ParseDate(req.DateFrom)
	if err != nil {
		return nil, apperr.Invalidf("invalid date_from: %s", req.DateFrom)
	}
	dateTo, err := ParseDate(req.DateTo)
	if err != nil {
		return nil, apperr.Invalidf("invalid date_to: %s", req.DateTo)
	}
	if dateTo.Before(dateFrom) {
		return nil, apperr.Invalidf("date_to %s precedes date_from %s", req.DateTo, req.DateFrom)
	}

	weekDays := NormalizeWeekDays(req.WeekDays)
	if len(weekDays) == 0 {
		return nil, apperr.Invalidf("week_days must contain at least one weekday")
	}

	categories, err := normalizeCategories(req.Categories)
	if err != nil {
		return nil, err
	}

	calendar := ExpandCalendar(dateFrom, dateTo, weekDays)
	if len(calendar) == 0 {
		return nil, apperr.Invalidf("validity window contains no operating days for the given pattern")
	}

	flight := &CharterFlight{
		From:             strings.TrimSpace(req.From),
		To:               strings.TrimSpace(req.To),
		DateFrom:         dateFrom,
		DateTo:           dateTo,
		WeekDays:         weekDays,
		Categories:       categories,
		SeatsTotal:       req.SeatsTotal,
		IsActive:         true,
		HasBusinessClass: false,
		HasComfortClass:  false,
		CreatedBy:        createdBy,
	}
	if req.IsActive != nil {
		flight.IsActive = *req.IsActive
	}
	if req.HasBusinessClass != nil {
		flight.HasBusinessClass = *req.HasBusinessClass
	}
	if req.HasComfortClass != nil {
		flight.HasComfortClass = *req.HasComfortClass
	}

	if err := s.repo.Create(ctx, flight, calendar); err != nil {
		return nil, err
	}

	s.invalidateFlightCaches(ctx)
	creator := ""
	if createdBy != nil {
		creator = createdBy.String()
	}
	s.log.LogFlightCreated(ctx, flight.ID.String(), flight.PublicID, creator)

	resp := flight.ToResponse()
	return &resp, nil
}

// UpdateFlight applies a partial update and reconciles the ledger. Changing
// the schedule (window, pattern) or capacity rescales ledger rows without
// losing booked seats.
func (s *service) UpdateFlight(ctx context.Context, ref string, req UpdateFlightRequest) (*FlightResponse, error) {
	current, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	dateFrom := NormalizeDate(current.DateFrom)
	dateTo := NormalizeDate(current.DateTo)
	weekDays := current.WeekDays
	seatsTotal := current.SeatsTotal

	if req.From != nil {
		from := strings.TrimSpace(*req.From)
		if from == "" {
			return nil, apperr.Invalidf("from must not be blank")
		}
		updates["from_city"] = from
	}
	if req.To != nil {
		to := strings.TrimSpace(*req.To)
		if to == "" {
			return nil, apperr.Invalidf("to must not be blank")
		}
		updates["to_city"] = to
	}
	if req.DateFrom != nil {
		dateFrom, err = ParseDate(*req.DateFrom)
		if err != nil {
			return nil, apperr.Invalidf("invalid date_from: %s", *req.DateFrom)
		}
		updates["date_from"] = dateFrom
	}
	if req.DateTo != nil {
		dateTo, err = ParseDate(*req.DateTo)
		if err != nil {
			return nil, apperr.Invalidf("invalid date_to: %s", *req.DateTo)
		}
		updates["date_to"] = dateTo
	}
	if dateTo.Before(dateFrom) {
		return nil, apperr.Invalidf("date_to precedes date_from")
	}
	if req.WeekDays != nil {
		weekDays = NormalizeWeekDays(req.WeekDays)
		if len(weekDays) == 0 {
			return nil, apperr.Invalidf("week_days must contain at least one weekday")
		}
		updates["week_days"] = weekDays
	}
	if req.Categories != nil {
		categories, err := normalizeCategories(req.Categories)
		if err != nil {
			return nil, err
		}
		updates["categories"] = categories
	}

	totalChanged := false
	if req.SeatsTotal != nil && *req.SeatsTotal != current.SeatsTotal {
		seatsTotal = *req.SeatsTotal
		totalChanged = true
		updates["seats_total"] = seatsTotal
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.HasBusinessClass != nil {
		updates["has_business_class"] = *req.HasBusinessClass
	}
	if req.HasComfortClass != nil {
		updates["has_comfort_class"] = *req.HasComfortClass
	}

	calendar := ExpandCalendar(dateFrom, dateTo, weekDays)
	if len(calendar) == 0 {
		return nil, apperr.Invalidf("updated schedule contains no operating days")
	}

	updated, err := s.repo.Update(ctx, current.ID, updates, calendar, seatsTotal, totalChanged)
	if err != nil {
		return nil, err
	}

	s.invalidateFlightCaches(ctx)
	s.log.Info("flight updated", "public_id", updated.PublicID, "fields", len(updates))

	resp := updated.ToResponse()
	return &resp, nil
}

// GetFlight fetches one flight. In public scope an inactive flight reads as
// absent rather than forbidden.
func (s *service) GetFlight(ctx context.Context, ref string, publicOnly bool) (*FlightResponse, error) {
	cacheKey := constants.BuildFlightDetailKey(ref)
	if publicOnly {
		cacheKey = constants.BuildFlightPublicKey(ref)
	}

	var cached FlightResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).Warn("flight detail cache read failed", "key", cacheKey)
	}

	flight, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if publicOnly && !flight.IsActive {
		return nil, apperr.NotFoundf("flight %s not found", ref)
	}

	resp := flight.ToResponse()
	s.setCache(ctx, cacheKey, resp, constants.TTL_FLIGHT_DETAIL)
	return &resp, nil
}

// GetFlightDates returns the flight's availability ledger in ascending date
// order. Never cached; seat counts must be fresh.
func (s *service) GetFlightDates(ctx context.Context, ref string) ([]FlightDateResponse, error) {
	flight, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	ledger, err := s.repo.GetLedger(ctx, flight.ID)
	if err != nil {
		return nil, err
	}

	out := make([]FlightDateResponse, 0, len(ledger))
	for i := range ledger {
		out = append(out, ledger[i].ToResponse())
	}
	return out, nil
}

// ListFlights runs the filtered, paginated catalog query. Public scope pins
// is_active=true regardless of what the query string claims.
func (s *service) ListFlights(ctx context.Context, req FlightListRequest, publicOnly bool) (*PaginatedFlights, error) {
	query, err := s.buildListQuery(req, publicOnly)
	if err != nil {
		return nil, err
	}

	scope := "admin"
	if publicOnly {
		scope = "public"
	}
	cacheKey := constants.BuildFlightListKey(scope, query.Page, query.Limit, hashListFilters(query))

	var cached PaginatedFlights
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).Warn("flight list cache read failed", "key", cacheKey)
	}

	flights, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]FlightResponse, 0, len(flights))
	for i := range flights {
		responses = append(responses, flights[i].ToResponse())
	}

	result := &PaginatedFlights{
		Flights:    responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}

	s.setCache(ctx, cacheKey, result, constants.TTL_FLIGHT_LIST)
	return result, nil
}

func (s *service) buildListQuery(req FlightListRequest, publicOnly bool) (FlightListQuery, error) {
	query := FlightListQuery{
		Page:             req.Page,
		Limit:            req.Limit,
		From:             strings.TrimSpace(req.From),
		To:               strings.TrimSpace(req.To),
		HasBusinessClass: req.HasBusinessClass,
		HasComfortClass:  req.HasComfortClass,
		HasSeats:         req.HasSeats,
		IsActive:         req.IsActive,
		Pax:              req.Pax,
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	if publicOnly {
		active := true
		query.IsActive = &active
	}

	if req.Categories != "" {
		for _, raw := range strings.Split(req.Categories, ",") {
			category := strings.TrimSpace(raw)
			if category == "" {
				continue
			}
			if !IsValidCategory(category) {
				return FlightListQuery{}, apperr.Invalidf("unknown category %q", category)
			}
			query.Categories = append(query.Categories, category)
		}
	}

	if req.DateFrom != "" {
		dateFrom, err := ParseDate(req.DateFrom)
		if err != nil {
			return FlightListQuery{}, apperr.Invalidf("invalid date_from: %s", req.DateFrom)
		}
		query.DateFrom = &dateFrom
	}
	if req.DateTo != "" {
		dateTo, err := ParseDate(req.DateTo)
		if err != nil {
			return FlightListQuery{}, apperr.Invalidf("invalid date_to: %s", req.DateTo)
		}
		query.DateTo = &dateTo
	}
	if query.DateFrom != nil && query.DateTo != nil && query.DateTo.Before(*query.DateFrom) {
		return FlightListQuery{}, apperr.Invalidf("date_to precedes date_from")
	}

	return query, nil
}

func normalizeCategories(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(strings.ToLower(c))
		if c == "" || seen[c] {
			continue
		}
		if !IsValidCategory(c) {
			return nil, apperr.Invalidf("unknown category %q", c)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// hashListFilters digests the filter fields into a short cache-key component
// so distinct filter combinations never collide on one key.
func hashListFilters(q FlightListQuery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "from=%s|to=%s|cat=%s|seats=%t|pax=%d", q.From, q.To, strings.Join(q.Categories, ","), q.HasSeats, q.Pax)
	if q.HasBusinessClass != nil {
		fmt.Fprintf(&b, "|biz=%t", *q.HasBusinessClass)
	}
	if q.HasComfortClass != nil {
		fmt.Fprintf(&b, "|comfort=%t", *q.HasComfortClass)
	}
	if q.IsActive != nil {
		fmt.Fprintf(&b, "|active=%t", *q.IsActive)
	}
	if q.DateFrom != nil {
		fmt.Fprintf(&b, "|df=%s", q.DateFrom.Format(dateLayout))
	}
	if q.DateTo != nil {
		fmt.Fprintf(&b, "|dt=%s", q.DateTo.Format(dateLayout))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
