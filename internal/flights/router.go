package flights

import (
	"travelly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupFlightRoutes(router *gin.RouterGroup, controller Controller) {
	// Public catalog - only active flights are visible here
	publicFlights := router.Group("/flights")
	{
		publicFlights.GET("", controller.ListFlights)               // GET /api/v1/flights
		publicFlights.GET("/:ref", controller.GetFlight)            // GET /api/v1/flights/:ref
		publicFlights.GET("/:ref/dates", controller.GetFlightDates) // GET /api/v1/flights/:ref/dates
	}

	// Admin catalog management - staff only
	adminFlights := router.Group("/admin/flights")
	adminFlights.Use(middleware.JWTAuth(), middleware.RequireStaff())
	{
		adminFlights.POST("", controller.CreateFlight)             // POST /api/v1/admin/flights
		adminFlights.PUT("/:ref", controller.UpdateFlight)         // PUT /api/v1/admin/flights/:ref
		adminFlights.GET("", controller.ListFlightsAdmin)          // GET /api/v1/admin/flights
		adminFlights.GET("/:ref", controller.GetFlightAdmin)       // GET /api/v1/admin/flights/:ref
		adminFlights.GET("/:ref/dates", controller.GetFlightDates) // GET /api/v1/admin/flights/:ref/dates
	}
}
