package models

// Station is a charging station record as returned by the search provider.
// It is kept as the decoded JSON object so that every provider field survives
// the round trip to the client; the accessors below read the fields the map
// viewer relies on.
type Station map[string]any

// Position is a WGS84 coordinate.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewStation builds a station in the provider's shape from its core fields.
func NewStation(id, name, address string, lat, lon float64) Station {
	s := Station{
		"id":       id,
		"position": map[string]any{"lat": lat, "lon": lon},
	}
	if name != "" {
		s["poi"] = map[string]any{"name": name}
	}
	if address != "" {
		s["address"] = map[string]any{"freeformAddress": address}
	}
	return s
}

// ID returns the station identifier, or "" when absent.
func (s Station) ID() string {
	id, _ := s["id"].(string)
	return id
}

// Name returns the top-level name, falling back to poi.name.
func (s Station) Name() string {
	if name, ok := s["name"].(string); ok {
		return name
	}
	name, _ := lookup(s, "poi", "name").(string)
	return name
}

// Address returns the top-level address when it is a string, falling back to
// address.freeformAddress.
func (s Station) Address() string {
	if addr, ok := s["address"].(string); ok {
		return addr
	}
	addr, _ := lookup(s, "address", "freeformAddress").(string)
	return addr
}

// Position reports the station coordinate. ok is false unless both lat and lon
// are present, numeric and non-zero.
func (s Station) Position() (Position, bool) {
	lat, latOK := number(lookup(s, "position", "lat"))
	lon, lonOK := number(lookup(s, "position", "lon"))
	if !latOK || !lonOK || lat == 0 || lon == 0 {
		return Position{}, false
	}
	return Position{Lat: lat, Lon: lon}, true
}

// AvailabilityID returns dataSources.chargingAvailability.id, used for the
// real-time availability lookup.
func (s Station) AvailabilityID() string {
	id, _ := lookup(s, "dataSources", "chargingAvailability", "id").(string)
	return id
}

func lookup(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
