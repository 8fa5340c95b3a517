package tui

import (
	"sync"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/viewer"
)

// A terminal cell stands for cellWidth x cellHeight map pixels. The 1:2
// ratio matches a typical terminal glyph.
const (
	cellWidth  = 4.0
	cellHeight = 8.0
)

// screen is the drawable map area. It is shared between the bubbletea model,
// which sizes it, and the controller, which asks for visible bounds from its
// own goroutine.
type screen struct {
	ctrl *viewer.Controller

	mu   sync.RWMutex
	cols int
	rows int
}

func (s *screen) resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = max(cols, 0)
	s.rows = max(rows, 0)
}

func (s *screen) size() (cols, rows int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols, s.rows
}

// origin returns the world pixel at the top left corner for state.
func (s *screen) origin(state viewer.ViewportState) (x, y float64) {
	cols, rows := s.size()
	cx, cy := geo.Project(state.Latitude, state.Longitude, state.Zoom)
	return cx - float64(cols)*cellWidth/2, cy - float64(rows)*cellHeight/2
}

// VisibleBounds reports the geographic extent of the map area. It is not
// ready until the terminal size is known.
func (s *screen) VisibleBounds() (geo.BoundingBox, bool) {
	cols, rows := s.size()
	if cols == 0 || rows == 0 {
		return geo.BoundingBox{}, false
	}
	state := s.ctrl.Viewport()
	ox, oy := s.origin(state)
	maxLat, minLon := geo.Unproject(ox, oy, state.Zoom)
	minLat, maxLon := geo.Unproject(ox+float64(cols)*cellWidth, oy+float64(rows)*cellHeight, state.Zoom)
	return geo.BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}, true
}

// ToScreen maps a coordinate to map-area pixels for the current camera.
func (s *screen) ToScreen(lat, lon float64) (float64, float64) {
	state := s.ctrl.Viewport()
	ox, oy := s.origin(state)
	x, y := geo.Project(lat, lon, state.Zoom)
	return x - ox, y - oy
}

// cellCenter returns the map-area pixel at the middle of a cell.
func cellCenter(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * cellWidth, (float64(row) + 0.5) * cellHeight
}

// cellOf returns the cell containing a map-area pixel.
func cellOf(x, y float64) (col, row int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	return int(x / cellWidth), int(y / cellHeight), true
}
