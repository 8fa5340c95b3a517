package service

import (
	"context"
	"errors"
	"fmt"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"

	"github.com/rs/zerolog"
)

// largeAreaDegrees is the span above which a search is logged as unusually large.
const largeAreaDegrees = 5.0

// ErrInvalidBounds is returned for inverted or non-finite bounding boxes.
var ErrInvalidBounds = errors.New("service: invalid bounding box")

// StationSource finds stations inside a bounding box
type StationSource interface {
	FindStationsInBounds(ctx context.Context, bounds geo.BoundingBox) ([]models.Station, error)
}

// StationService contains the business logic for bounding box station searches
type StationService struct {
	source StationSource
	logger zerolog.Logger
}

// NewStationService creates a new station service
func NewStationService(source StationSource, logger zerolog.Logger) *StationService {
	return &StationService{source: source, logger: logger}
}

// SearchStations returns the stations inside bounds. Boxes that overshoot the
// poles or the antimeridian are clamped rather than rejected.
func (s *StationService) SearchStations(ctx context.Context, bounds geo.BoundingBox) ([]models.Station, error) {
	bounds = bounds.Clamp()
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
	}

	latSpan, lonSpan := bounds.Span()
	if latSpan > largeAreaDegrees || lonSpan > largeAreaDegrees {
		s.logger.Warn().Stringer("bounds", bounds).Msg("requested area is very large")
	}

	stations, err := s.source.FindStationsInBounds(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search stations: %w", err)
	}

	if stations == nil {
		stations = []models.Station{}
	}
	return stations, nil
}
