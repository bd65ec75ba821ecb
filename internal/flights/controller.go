package flights

import (
	"net/http"

	"travelly/internal/shared/utils/response"
	"travelly/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateFlight(c *gin.Context)
	UpdateFlight(c *gin.Context)
	GetFlight(c *gin.Context)
	GetFlightAdmin(c *gin.Context)
	GetFlightDates(c *gin.Context)
	ListFlights(c *gin.Context)
	ListFlightsAdmin(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateFlight(c *gin.Context) {
	var req CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	var createdBy *uuid.UUID
	if rawID, exists := c.Get("user_id"); exists {
		if idStr, ok := rawID.(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				createdBy = &id
			}
		}
	}

	flight, err := ctrl.service.CreateFlight(c.Request.Context(), createdBy, req)
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Flight created successfully", flight, nil)
}

func (ctrl *controller) UpdateFlight(c *gin.Context) {
	var req UpdateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	flight, err := ctrl.service.UpdateFlight(c.Request.Context(), c.Param("ref"), req)
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight updated successfully", flight, nil)
}

func (ctrl *controller) GetFlight(c *gin.Context) {
	ctrl.getFlight(c, true)
}

func (ctrl *controller) GetFlightAdmin(c *gin.Context) {
	ctrl.getFlight(c, false)
}

func (ctrl *controller) getFlight(c *gin.Context, publicOnly bool) {
	flight, err := ctrl.service.GetFlight(c.Request.Context(), c.Param("ref"), publicOnly)
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight retrieved successfully", flight, nil)
}

func (ctrl *controller) GetFlightDates(c *gin.Context) {
	dates, err := ctrl.service.GetFlightDates(c.Request.Context(), c.Param("ref"))
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight dates retrieved successfully", dates, nil)
}

func (ctrl *controller) ListFlights(c *gin.Context) {
	ctrl.listFlights(c, true)
}

func (ctrl *controller) ListFlightsAdmin(c *gin.Context) {
	ctrl.listFlights(c, false)
}

func (ctrl *controller) listFlights(c *gin.Context, publicOnly bool) {
	var req FlightListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.ListFlights(c.Request.Context(), req, publicOnly)
	if err != nil {
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flights retrieved successfully", result, nil)
}
