package bookings

import (
	"travelly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller Controller) {
	// Authenticated users create and browse their own bookings
	userBookings := router.Group("/bookings")
	userBookings.Use(middleware.JWTAuth())
	{
		userBookings.POST("", controller.CreateBooking)  // POST /api/v1/bookings
		userBookings.GET("", controller.ListBookings)    // GET /api/v1/bookings
		userBookings.GET("/:ref", controller.GetBooking) // GET /api/v1/bookings/:ref
	}

	// Staff manage the lifecycle of any booking
	adminBookings := router.Group("/admin/bookings")
	adminBookings.Use(middleware.JWTAuth(), middleware.RequireStaff())
	{
		adminBookings.GET("", controller.ListBookings)                      // GET /api/v1/admin/bookings
		adminBookings.GET("/:ref", controller.GetBooking)                   // GET /api/v1/admin/bookings/:ref
		adminBookings.POST("", controller.CreateBooking)                    // POST /api/v1/admin/bookings
		adminBookings.PATCH("/:ref/status", controller.UpdateBookingStatus) // PATCH /api/v1/admin/bookings/:ref/status
	}
}
