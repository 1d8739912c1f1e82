package matching

import (
	"github.com/gin-gonic/gin"

	"github.com/ridealong/event-carpool/pkg/common"
)

// Handler handles HTTP requests for matching runs
type Handler struct {
	service *Service
}

// NewHandler creates a new matching handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers matching routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	m := rg.Group("/matches")
	{
		m.POST("", h.CreateMatch)
		m.GET("/config/defaults", h.GetDefaultConfig)
		m.GET("/:id", h.GetMatch)
	}
}

// CreateMatch runs the matching algorithm over the posted participants and
// returns the full result.
func (h *Handler) CreateMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid match request payload", err))
		return
	}

	result, err := h.service.Match(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "matching run failed") {
		return
	}
	common.CreatedResponse(c, result)
}

// GetMatch returns a previously computed result by run ID.
func (h *Handler) GetMatch(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "match ID")
	if !ok {
		return
	}

	result, err := h.service.GetResult(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get match result") {
		return
	}
	common.SuccessResponse(c, result)
}

// GetDefaultConfig returns the configuration a request without a profile or
// overrides would run with.
func (h *Handler) GetDefaultConfig(c *gin.Context) {
	common.SuccessResponse(c, h.service.EffectiveDefaultConfig(c.Request.Context()))
}
