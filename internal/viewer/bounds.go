package viewer

import "ev-station-map/internal/geo"

// ApproxBoundsDelta is the half-size in degrees of the box used before the
// renderer can report its visible area.
const ApproxBoundsDelta = 0.3

// BoundsReporter is a live renderer that knows its exact visible area.
// ok is false until the renderer is initialized.
type BoundsReporter interface {
	VisibleBounds() (bounds geo.BoundingBox, ok bool)
}

// ResolveBounds returns the renderer's visible bounds when available and an
// approximate box around the viewport center otherwise. The approximation
// ignores aspect ratio and projection distortion.
func ResolveBounds(state ViewportState, renderer BoundsReporter) geo.BoundingBox {
	if renderer != nil {
		if b, ok := renderer.VisibleBounds(); ok {
			return b
		}
	}
	return geo.AroundPoint(state.Latitude, state.Longitude, ApproxBoundsDelta)
}
