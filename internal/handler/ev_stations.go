package handler

import (
	"context"
	"net/http"
	"strconv"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"

	"github.com/gin-gonic/gin"
)

// StationHandler handles bounding box station searches
type StationHandler struct {
	service StationSearchService
}

// StationSearchService interface for dependency injection
type StationSearchService interface {
	SearchStations(context.Context, geo.BoundingBox) ([]models.Station, error)
}

// StationsResponse is the body of a successful station search
type StationsResponse struct {
	Results []models.Station `json:"results"`
}

// NewStationHandler creates a new station handler
func NewStationHandler(svc StationSearchService) *StationHandler {
	return &StationHandler{service: svc}
}

// SearchStations handles GET /api/ev-stations requests
//
//	@Summary	Search EV charging stations inside a bounding box
//	@Tags		stations
//	@Produce	json
//	@Param		min_lat	query		number	true	"southern edge"
//	@Param		min_lon	query		number	true	"western edge"
//	@Param		max_lat	query		number	true	"northern edge"
//	@Param		max_lon	query		number	true	"eastern edge"
//	@Success	200		{object}	StationsResponse
//	@Failure	400		{object}	map[string]string
//	@Failure	504		{object}	map[string]string
//	@Router		/api/ev-stations [get]
func (h *StationHandler) SearchStations(c *gin.Context) {
	names := [4]string{"min_lat", "min_lon", "max_lat", "max_lon"}
	var values [4]float64

	for i, name := range names {
		raw := c.Query(name)
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'min_lat', 'min_lon', 'max_lat' and 'max_lon'"})
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " format"})
			return
		}
		values[i] = v
	}

	bounds := geo.BoundingBox{MinLat: values[0], MinLon: values[1], MaxLat: values[2], MaxLon: values[3]}

	stations, err := h.service.SearchStations(c.Request.Context(), bounds)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StationsResponse{Results: stations})
}
