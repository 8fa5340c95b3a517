package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// BoundingBox is a latitude/longitude rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// AroundPoint returns the box center ± delta degrees on both axes.
// Poles and the antimeridian are not corrected.
func AroundPoint(lat, lon, delta float64) BoundingBox {
	return BoundingBox{
		MinLat: lat - delta,
		MinLon: lon - delta,
		MaxLat: lat + delta,
		MaxLon: lon + delta,
	}
}

// FromBound converts an orb.Bound (x = lon, y = lat).
func FromBound(b orb.Bound) BoundingBox {
	return BoundingBox{MinLat: b.Min.Lat(), MinLon: b.Min.Lon(), MaxLat: b.Max.Lat(), MaxLon: b.Max.Lon()}
}

// Bound converts to an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return b.Bound().Contains(orb.Point{lon, lat})
}

// Span returns the absolute latitude and longitude extents.
func (b BoundingBox) Span() (latSpan, lonSpan float64) {
	return math.Abs(b.MaxLat - b.MinLat), math.Abs(b.MaxLon - b.MinLon)
}

// Clamp limits the box to WGS84 ranges. Boxes built around a point near a
// pole or the antimeridian overshoot them.
func (b BoundingBox) Clamp() BoundingBox {
	return BoundingBox{
		MinLat: clamp(b.MinLat, -90, 90),
		MinLon: clamp(b.MinLon, -180, 180),
		MaxLat: clamp(b.MaxLat, -90, 90),
		MaxLon: clamp(b.MaxLon, -180, 180),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Validate checks the box is finite, inside WGS84 ranges and not inverted.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.MinLat, b.MinLon, b.MaxLat, b.MaxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite coordinate in %s", b)
		}
	}
	if b.MinLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("latitude out of range: [%f, %f]", b.MinLat, b.MaxLat)
	}
	if b.MinLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("longitude out of range: [%f, %f]", b.MinLon, b.MaxLon)
	}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return fmt.Errorf("inverted bounding box: (%f,%f)-(%f,%f)", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	}
	return nil
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}
