package geo

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ridealong/event-carpool/pkg/common"
	"github.com/ridealong/event-carpool/pkg/validation"
)

// Handler exposes geocoding endpoints.
type Handler struct {
	geocoding *GeocodingService
}

// NewHandler creates a new geo handler
func NewHandler(geocoding *GeocodingService) *Handler {
	return &Handler{geocoding: geocoding}
}

// RegisterRoutes registers geocoding routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/geocode")
	{
		g.POST("", h.Geocode)
		g.GET("/reverse", h.ReverseGeocode)
	}
}

// Geocode resolves an address to coordinates.
func (h *Handler) Geocode(c *gin.Context) {
	var req validation.GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid geocode payload", err))
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.AppErrorResponse(c, common.NewValidationError(err.Error(), err))
		return
	}

	result, err := h.geocoding.ForwardGeocode(c.Request.Context(), req.Address)
	if common.HandleServiceError(c, err, "failed to geocode address") {
		return
	}
	common.SuccessResponse(c, result)
}

// ReverseGeocode resolves coordinates to an address.
func (h *Handler) ReverseGeocode(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid lat parameter", err))
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid lng parameter", err))
		return
	}
	if err := validation.ValidateCoordinates(lat, lng); err != nil {
		common.AppErrorResponse(c, common.NewValidationError(err.Error(), err))
		return
	}

	result, err := h.geocoding.ReverseGeocode(c.Request.Context(), lat, lng)
	if common.HandleServiceError(c, err, "failed to reverse geocode") {
		return
	}
	common.SuccessResponse(c, result)
}
