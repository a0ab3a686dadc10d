package routes

import (
	"net/http"
	"time"

	"fixline/handlers"
	"fixline/middleware"
	"fixline/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the dispatch engine.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", middleware.JWTAuthMiddleware(utils.RoleCustomer), bh.CreateBooking)
		bookings.GET("/customer", middleware.JWTAuthMiddleware(utils.RoleCustomer), bh.GetCustomerBookings)
		bookings.GET("/technician", middleware.JWTAuthMiddleware(utils.RoleTechnician), bh.GetTechnicianBookings)
		bookings.GET("/:id", middleware.JWTAuthMiddleware(), bh.GetBooking)
		bookings.PUT("/:id/complete", middleware.JWTAuthMiddleware(utils.RoleTechnician), bh.CompleteBooking)
		bookings.DELETE("/:id", middleware.JWTAuthMiddleware(utils.RoleCustomer), bh.CancelBooking)
	}

	dispatchGroup := r.Group("/api/dispatch")
	{
		dispatchGroup.Use(middleware.JWTAuthMiddleware(utils.RoleTechnician))
		dispatchGroup.POST("/response", bh.RespondToBooking)
	}
}

// RegisterRealtimeRoutes sets up the SSE session stream.
func RegisterRealtimeRoutes(r *gin.Engine, rh *handlers.RealtimeHandler) {
	realtime := r.Group("/api/realtime")
	{
		realtime.Use(middleware.JWTAuthMiddleware())
		realtime.GET("/stream", rh.Stream)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Fixline"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler, rh *handlers.RealtimeHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterBookingRoutes(r, bh)
	RegisterRealtimeRoutes(r, rh)
	RegisterHealthRoute(r)
}
