package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Station {
	t.Helper()
	var s Station
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

func TestStation_Accessors(t *testing.T) {
	s := decode(t, `{
		"id": "JP/POI/p0/1",
		"poi": {"name": "丸の内パークビル EV"},
		"address": {"freeformAddress": "東京都千代田区丸の内2-6-1"},
		"position": {"lat": 35.6812, "lon": 139.7671},
		"dataSources": {"chargingAvailability": {"id": "avail-1"}}
	}`)

	assert.Equal(t, "JP/POI/p0/1", s.ID())
	assert.Equal(t, "丸の内パークビル EV", s.Name())
	assert.Equal(t, "東京都千代田区丸の内2-6-1", s.Address())
	assert.Equal(t, "avail-1", s.AvailabilityID())

	pos, ok := s.Position()
	require.True(t, ok)
	assert.Equal(t, Position{Lat: 35.6812, Lon: 139.7671}, pos)
}

func TestStation_FlatNameAndAddress(t *testing.T) {
	s := decode(t, `{"id": "1", "name": "Depot", "address": "1 Main St", "position": {"lat": 1, "lon": 2}}`)

	assert.Equal(t, "Depot", s.Name())
	assert.Equal(t, "1 Main St", s.Address())
}

func TestStation_Position(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "valid", raw: `{"position": {"lat": 35.6, "lon": 139.7}}`, ok: true},
		{name: "missing lon", raw: `{"position": {"lat": 35.6}}`, ok: false},
		{name: "missing position", raw: `{"id": "x"}`, ok: false},
		{name: "zero lat", raw: `{"position": {"lat": 0, "lon": 139.7}}`, ok: false},
		{name: "null lon", raw: `{"position": {"lat": 35.6, "lon": null}}`, ok: false},
		{name: "string lat", raw: `{"position": {"lat": "35.6", "lon": 139.7}}`, ok: false},
		{name: "position not an object", raw: `{"position": [35.6, 139.7]}`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := decode(t, tt.raw).Position()
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNewStation(t *testing.T) {
	s := NewStation("42", "Depot", "1 Main St", 35.5, 139.5)

	assert.Equal(t, "42", s.ID())
	assert.Equal(t, "Depot", s.Name())
	assert.Equal(t, "1 Main St", s.Address())
	pos, ok := s.Position()
	require.True(t, ok)
	assert.Equal(t, 35.5, pos.Lat)

	bare := NewStation("43", "", "", 1, 2)
	assert.NotContains(t, bare, "poi")
	assert.NotContains(t, bare, "address")
}
