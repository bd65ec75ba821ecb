package bookings

import (
	"net/http"

	"travelly/internal/shared/middleware"
	"travelly/internal/shared/utils/response"
	"travelly/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	CreateBooking(c *gin.Context)
	UpdateBookingStatus(c *gin.Context)
	GetBooking(c *gin.Context)
	ListBookings(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func currentActor(c *gin.Context) (Actor, bool) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return Actor{}, false
	}
	return Actor{UserID: userID, Role: role}, true
}

func (ctrl *controller) CreateBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

func (ctrl *controller) UpdateBookingStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := ctrl.service.UpdateBookingStatus(c.Request.Context(), c.Param("ref"), req)
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking status updated successfully", booking, nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), actor, c.Param("ref"))
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (ctrl *controller) ListBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req BookingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.ListBookings(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}
