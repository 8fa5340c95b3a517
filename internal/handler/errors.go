package handler

import (
	"errors"
	"net/http"

	"ev-station-map/internal/service"
	"ev-station-map/internal/tomtom"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps service and upstream errors onto HTTP responses.
// Upstream TomTom failures keep their status code.
func respondError(c *gin.Context, err error) {
	var apiErr *tomtom.APIError

	switch {
	case errors.Is(err, service.ErrInvalidBounds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bounding box"})
	case errors.Is(err, service.ErrMissingAvailabilityID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing availability id"})
	case errors.As(err, &apiErr):
		c.JSON(apiErr.StatusCode, gin.H{"error": "TomTom API Error: " + apiErr.Body})
	case errors.Is(err, tomtom.ErrBatchTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "batch processing timed out"})
	case errors.Is(err, tomtom.ErrNoStatusURL):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch submission failed: no status URL"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
