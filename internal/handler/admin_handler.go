package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/clinlix/service-booking/internal/application"
	"github.com/clinlix/service-booking/pkg/auth"
	"github.com/clinlix/service-booking/pkg/middleware"
	"github.com/clinlix/service-booking/pkg/response"
)

// AdminHandler handles HTTP requests for admin booking operations.
type AdminHandler struct {
	service *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.BookingService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListAllBookings)
		admin.GET("/bookings/stats", h.GetBookingStats)
	}
}

// ListAllBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListAllBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// GetBookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) GetBookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
