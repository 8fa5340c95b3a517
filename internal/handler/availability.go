package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler handles charging availability lookups
type AvailabilityHandler struct {
	service AvailabilityService
}

// AvailabilityService interface for dependency injection
type AvailabilityService interface {
	Availability(context.Context, string) (map[string]any, error)
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(svc AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Availability handles GET /api/ev-stations/availability/:id requests
//
//	@Summary	Real-time availability of a charging park
//	@Tags		stations
//	@Produce	json
//	@Param		id	path		string	true	"charging availability id"
//	@Success	200	{object}	map[string]any
//	@Failure	404	{object}	map[string]string
//	@Router		/api/ev-stations/availability/{id} [get]
func (h *AvailabilityHandler) Availability(c *gin.Context) {
	doc, err := h.service.Availability(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}
