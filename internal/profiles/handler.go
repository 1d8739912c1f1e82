package profiles

import (
	"github.com/gin-gonic/gin"

	"github.com/ridealong/event-carpool/pkg/common"
)

// Handler handles HTTP requests for matching profiles
type Handler struct {
	service *Service
}

// NewHandler creates a new profiles handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers profile CRUD routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	p := rg.Group("/profiles")
	{
		p.POST("", h.CreateProfile)
		p.GET("", h.ListProfiles)
		p.GET("/:id", h.GetProfile)
		p.PUT("/:id", h.UpdateProfile)
		p.DELETE("/:id", h.DeleteProfile)
	}
}

// CreateProfile stores a new named matching configuration
func (h *Handler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid profile payload", err))
		return
	}

	profile, err := h.service.Create(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create profile") {
		return
	}
	common.CreatedResponse(c, profile)
}

// ListProfiles returns all stored profiles
func (h *Handler) ListProfiles(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to list profiles") {
		return
	}
	common.SuccessResponse(c, items)
}

// GetProfile returns one profile by ID
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "profile ID")
	if !ok {
		return
	}

	profile, err := h.service.Get(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get profile") {
		return
	}
	common.SuccessResponse(c, profile)
}

// UpdateProfile replaces a profile's contents
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "profile ID")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid profile payload", err))
		return
	}

	profile, err := h.service.Update(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update profile") {
		return
	}
	common.SuccessResponse(c, profile)
}

// DeleteProfile removes a profile
func (h *Handler) DeleteProfile(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "profile ID")
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to delete profile") {
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true})
}
