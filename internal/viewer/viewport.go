// Package viewer holds the state behind the station map: the camera, the
// debounced bounding box fetch, the marker layer and the selection panel.
// It is independent of how the map is drawn.
package viewer

import "sync"

// ViewportState is the camera of the map.
type ViewportState struct {
	Longitude float64
	Latitude  float64
	Zoom      float64
	Pitch     float64
	Bearing   float64
}

// Viewport owns the current camera. Every update replaces the whole state;
// values are not range-checked.
type Viewport struct {
	mu    sync.RWMutex
	state ViewportState
}

// NewViewport returns a holder starting at initial.
func NewViewport(initial ViewportState) *Viewport {
	return &Viewport{state: initial}
}

// Get returns the current camera.
func (v *Viewport) Get() ViewportState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Set replaces the current camera.
func (v *Viewport) Set(s ViewportState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = s
}
