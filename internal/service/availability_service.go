package service

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAvailabilityID is returned when no availability id is given.
var ErrMissingAvailabilityID = errors.New("service: availability id cannot be empty")

// AvailabilityProvider fetches real-time charging availability
type AvailabilityProvider interface {
	ChargingAvailability(ctx context.Context, availabilityID string) (map[string]any, error)
}

// AvailabilityService contains the business logic for availability lookups
type AvailabilityService struct {
	provider AvailabilityProvider
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(provider AvailabilityProvider) *AvailabilityService {
	return &AvailabilityService{provider: provider}
}

// Availability returns the availability document for a charging park
func (s *AvailabilityService) Availability(ctx context.Context, availabilityID string) (map[string]any, error) {
	if availabilityID == "" {
		return nil, ErrMissingAvailabilityID
	}

	doc, err := s.provider.ChargingAvailability(ctx, availabilityID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch availability: %w", err)
	}

	return doc, nil
}
