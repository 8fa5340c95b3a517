package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))
	return dir
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		expectError bool
		check       func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults with api key from file",
			file: "TOMTOM_API_KEY=secret\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "0.0.0.0:8002", cfg.ServerAddress)
				assert.Equal(t, SourceTomTom, cfg.StationSource)
				assert.Equal(t, "secret", cfg.TomTomAPIKey)
				assert.Equal(t, "https://api.tomtom.com", cfg.TomTomBaseURL)
				assert.Equal(t, 500*time.Millisecond, cfg.Viewer.Debounce)
				assert.Equal(t, 9.0, cfg.Viewer.MinZoom)
			},
		},
		{
			name: "environment overrides file",
			file: "TOMTOM_API_KEY=secret\nSERVER_ADDRESS=127.0.0.1:9000\n",
			env:  map[string]string{"SERVER_ADDRESS": "127.0.0.1:9100", "VIEWER_DEBOUNCE": "250ms"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "127.0.0.1:9100", cfg.ServerAddress)
				assert.Equal(t, 250*time.Millisecond, cfg.Viewer.Debounce)
			},
		},
		{
			name:        "missing api key for tomtom source",
			file:        "STATION_SOURCE=tomtom\n",
			expectError: true,
		},
		{
			name:        "postgis source requires db source",
			file:        "STATION_SOURCE=postgis\nDB_SOURCE=\n",
			expectError: true,
		},
		{
			name: "postgis source without api key",
			file: "STATION_SOURCE=postgis\nDB_SOURCE=postgres://u:p@localhost:5432/db\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, SourcePostGIS, cfg.StationSource)
				assert.Empty(t, cfg.TomTomAPIKey)
			},
		},
		{
			name:        "zero min zoom is rejected",
			file:        "TOMTOM_API_KEY=secret\nVIEWER_MIN_ZOOM=0\n",
			expectError: true,
		},
		{
			name: "configured min zoom",
			file: "TOMTOM_API_KEY=secret\nVIEWER_MIN_ZOOM=12\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 12.0, cfg.Viewer.MinZoom)
			},
		},
		{
			name:        "unknown station source",
			file:        "STATION_SOURCE=overpass\nTOMTOM_API_KEY=secret\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOMTOM_API_KEY", "")
			os.Unsetenv("TOMTOM_API_KEY")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := writeEnvFile(t, tt.file)

			cfg, err := LoadConfig(dir)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadViewerConfig(t *testing.T) {
	t.Setenv("TOMTOM_API_KEY", "")
	os.Unsetenv("TOMTOM_API_KEY")

	cfg, err := LoadViewerConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8002", cfg.APIURL)
	assert.Contains(t, cfg.TileURL, "{z}/{x}/{y}")
	assert.NotEmpty(t, cfg.TileAttribution)
	assert.Equal(t, 35.6812, cfg.StartLat)
	assert.Equal(t, 139.7671, cfg.StartLon)
	assert.Equal(t, 11.0, cfg.StartZoom)
	assert.Equal(t, "viewer.log", cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "stations.geojson", cfg.ExportFile)
}
