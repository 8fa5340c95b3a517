package service

import (
	"context"
	"fmt"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"
	"ev-station-map/internal/tomtom"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BatchSearcher runs TomTom batch searches
type BatchSearcher interface {
	SearchBatch(ctx context.Context, items []tomtom.BatchItem) (*tomtom.BatchResponse, error)
}

// SearchMetrics receives per-search observations
type SearchMetrics interface {
	ObserveBatchItem(statusCode int)
	ObserveStationsReturned(n int)
}

// TomTomSource covers a bounding box with a grid of radius searches sent as a
// single TomTom batch and merges the results.
type TomTomSource struct {
	client  BatchSearcher
	metrics SearchMetrics
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewTomTomSource creates a station source backed by TomTom batch search.
// metrics may be nil.
func NewTomTomSource(client BatchSearcher, metrics SearchMetrics, logger zerolog.Logger) *TomTomSource {
	return &TomTomSource{
		client:  client,
		metrics: metrics,
		logger:  logger,
		tracer:  otel.Tracer("ev-station-map/service"),
	}
}

// FindStationsInBounds implements StationSource.
func (s *TomTomSource) FindStationsInBounds(ctx context.Context, bounds geo.BoundingBox) ([]models.Station, error) {
	plan := geo.PlanSearchGrid(bounds)
	if len(plan.Points) == 0 {
		return []models.Station{}, nil
	}

	ctx, span := s.tracer.Start(ctx, "service.TomTomSource.FindStationsInBounds", trace.WithAttributes(
		attribute.Int("grid.points", len(plan.Points)),
		attribute.Float64("grid.step_km", plan.StepKm),
	))
	defer span.End()

	s.logger.Info().
		Int("points", len(plan.Points)).
		Float64("step_km", plan.StepKm).
		Stringer("bounds", bounds).
		Msg("generated search points")

	items := make([]tomtom.BatchItem, 0, len(plan.Points))
	for _, p := range plan.Points {
		items = append(items, tomtom.EVStationQuery(p, plan.RadiusMeters))
	}

	res, err := s.client.SearchBatch(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("tomtom source: batch search failed: %w", err)
	}

	stations := s.mergeResults(res)
	span.SetAttributes(attribute.Int("stations.unique", len(stations)))
	if s.metrics != nil {
		s.metrics.ObserveStationsReturned(len(stations))
	}
	s.logger.Info().Int("stations", len(stations)).Msg("total unique stations found via batch search")

	return stations, nil
}

// mergeResults keeps the last record seen for each id, in first-seen order.
// Failed items are logged and skipped.
func (s *TomTomSource) mergeResults(res *tomtom.BatchResponse) []models.Station {
	index := make(map[string]int)
	stations := []models.Station{}

	for i, item := range res.BatchItems {
		if s.metrics != nil {
			s.metrics.ObserveBatchItem(item.StatusCode)
		}
		if !item.OK() {
			s.logger.Error().Int("item", i).Int("status", item.StatusCode).RawJSON("response", rawOrNull(item.Response)).Msg("batch item failed")
			continue
		}

		results, err := item.Stations()
		if err != nil {
			s.logger.Error().Int("item", i).Err(err).Msg("batch item unreadable")
			continue
		}

		for _, st := range results {
			id := st.ID()
			if id == "" {
				continue
			}
			if at, seen := index[id]; seen {
				stations[at] = st
				continue
			}
			index[id] = len(stations)
			stations = append(stations, st)
		}
	}
	return stations
}

func rawOrNull(b []byte) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}
