package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/clinlix/service-booking/internal/domain/catalog"
	"github.com/clinlix/service-booking/pkg/response"
)

// CatalogHandler exposes the public service catalog. No auth: customers
// browse packages before signing in.
type CatalogHandler struct {
	catalog catalog.Repository
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(repo catalog.Repository) *CatalogHandler {
	return &CatalogHandler{catalog: repo}
}

// RegisterRoutes registers the catalog routes on the given router group.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	cat := r.Group("/api/v1/catalog")
	{
		cat.GET("/packages", h.ListPackages)
		cat.GET("/addons", h.ListAddons)
	}
}

// ListPackages handles GET /api/v1/catalog/packages.
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	packages, err := h.catalog.ListPackages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, packages)
}

// ListAddons handles GET /api/v1/catalog/addons.
func (h *CatalogHandler) ListAddons(c *gin.Context) {
	addons, err := h.catalog.ListAddons(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, addons)
}
