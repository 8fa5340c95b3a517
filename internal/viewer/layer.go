package viewer

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"ev-station-map/internal/models"
)

// Marker styling. Every station is drawn the same way.
const (
	MarkerRadius  = 6.0
	MarkerFill    = "#ff5722"
	MarkerOutline = "#ffffff"
)

// Cursor names shown while hovering.
const (
	CursorPointer = "pointer"
	CursorGrab    = "grab"
)

// Marker is one drawn station.
type Marker struct {
	Station  models.Station
	Position models.Position
	Radius   float64
	Fill     string
	Outline  string
}

// Layer is the set of markers for the current station list, in draw order.
type Layer struct {
	Markers []Marker
}

// Projector maps a geographic position to screen coordinates.
type Projector interface {
	ToScreen(lat, lon float64) (x, y float64)
}

// BuildLayer creates one marker per station with a usable position.
func BuildLayer(stations []models.Station) Layer {
	markers := make([]Marker, 0, len(stations))
	for _, s := range stations {
		pos, ok := s.Position()
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			Station:  s,
			Position: pos,
			Radius:   MarkerRadius,
			Fill:     MarkerFill,
			Outline:  MarkerOutline,
		})
	}
	return Layer{Markers: markers}
}

// HitTest returns the topmost marker whose circle contains the screen point.
func (l Layer) HitTest(p Projector, x, y float64) (Marker, bool) {
	for i := len(l.Markers) - 1; i >= 0; i-- {
		m := l.Markers[i]
		mx, my := p.ToScreen(m.Position.Lat, m.Position.Lon)
		dx, dy := x-mx, y-my
		if dx*dx+dy*dy <= m.Radius*m.Radius {
			return m, true
		}
	}
	return Marker{}, false
}

// Cursor returns the cursor for the hover state.
func Cursor(overMarker bool) string {
	if overMarker {
		return CursorPointer
	}
	return CursorGrab
}

// GeoJSON exports the layer as a FeatureCollection of points.
func (l Layer) GeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, m := range l.Markers {
		f := geojson.NewFeature(orb.Point{m.Position.Lon, m.Position.Lat})
		if id := m.Station.ID(); id != "" {
			f.ID = id
		}
		f.Properties["name"] = m.Station.Name()
		f.Properties["address"] = m.Station.Address()
		f.Properties["marker-size"] = m.Radius
		f.Properties["marker-color"] = m.Fill
		f.Properties["stroke"] = m.Outline
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("viewer: encode geojson: %w", err)
	}
	return data, nil
}
