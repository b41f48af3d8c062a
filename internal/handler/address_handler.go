package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinlix/service-booking/internal/application"
	"github.com/clinlix/service-booking/pkg/auth"
	"github.com/clinlix/service-booking/pkg/middleware"
	"github.com/clinlix/service-booking/pkg/response"
)

// AddressHandler handles HTTP requests for a customer's service addresses.
type AddressHandler struct {
	service *application.AddressService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *application.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// RegisterRoutes registers all address routes on the given router group.
func (h *AddressHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	addresses := r.Group("/api/v1/addresses")
	addresses.Use(middleware.AuthMiddleware(jwtManager))
	{
		addresses.POST("", h.CreateAddress)
		addresses.GET("", h.ListAddresses)
		addresses.PUT("/:id", h.UpdateAddress)
		addresses.DELETE("/:id", h.DeleteAddress)
	}
}

// CreateAddress handles POST /api/v1/addresses.
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateAddress(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListAddresses handles GET /api/v1/addresses.
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetUserAddresses(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateAddress handles PUT /api/v1/addresses/:id.
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid address ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateAddress(c.Request.Context(), addressID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteAddress handles DELETE /api/v1/addresses/:id.
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid address ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.DeleteAddress(c.Request.Context(), addressID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
