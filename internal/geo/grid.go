package geo

import (
	"math"
)

const kmPerDegree = 111.0

// SearchPoint is the center of one radius search.
type SearchPoint struct {
	Lat float64
	Lon float64
}

// SearchPlan is the set of radius searches that together cover a bounding box.
type SearchPlan struct {
	StepKm       float64
	RadiusMeters int
	Points       []SearchPoint
}

// PlanSearchGrid chooses a grid step and search radius from the size of the
// box and lays out the search centers. Larger boxes get sparser grids with
// wider radii so the number of searches stays bounded.
func PlanSearchGrid(b BoundingBox) SearchPlan {
	latSpan, lonSpan := b.Span()
	maxDiff := math.Max(latSpan, lonSpan)

	var plan SearchPlan
	switch {
	case maxDiff < 0.1:
		plan.StepKm, plan.RadiusMeters = 3, 5000
	case maxDiff < 0.5:
		plan.StepKm, plan.RadiusMeters = 10, 15000
	case maxDiff < 2.0:
		plan.StepKm, plan.RadiusMeters = 25, 35000
	default:
		plan.StepKm = math.Max(30, maxDiff*kmPerDegree/8)
		plan.RadiusMeters = 50000
	}

	plan.Points = RectGrid(b, plan.StepKm)
	return plan
}

// RectGrid lays out points every stepKm across the box, starting half a step
// in from the minimum corner and running one step past the maximum so the
// edges are covered. Longitude steps are scaled by the cosine of the mid latitude.
func RectGrid(b BoundingBox, stepKm float64) []SearchPoint {
	if stepKm <= 0 {
		return nil
	}

	midLat := (b.MinLat + b.MaxLat) / 2
	stepLat := stepKm / kmPerDegree
	stepLon := stepKm / (kmPerDegree * math.Cos(midLat*math.Pi/180))

	var points []SearchPoint
	for lat := b.MinLat + stepLat/2; lat < b.MaxLat+stepLat; lat += stepLat {
		for lon := b.MinLon + stepLon/2; lon < b.MaxLon+stepLon; lon += stepLon {
			points = append(points, SearchPoint{Lat: lat, Lon: lon})
		}
	}
	return points
}
