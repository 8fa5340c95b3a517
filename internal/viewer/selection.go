package viewer

import (
	"sync"

	"ev-station-map/internal/models"
)

// Selection is the station shown in the detail panel, if any.
type Selection struct {
	mu      sync.Mutex
	station models.Station
}

// Select shows s, replacing any previous selection.
func (s *Selection) Select(st models.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.station = st
}

// Dismiss closes the panel. It is a no-op when nothing is selected.
func (s *Selection) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.station = nil
}

// Selected returns the selected station.
func (s *Selection) Selected() (models.Station, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.station, s.station != nil
}
