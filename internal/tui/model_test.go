package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"
	"ev-station-map/internal/viewer"
)

type staticFetcher struct {
	stations []models.Station
	err      error
}

func (f staticFetcher) Fetch(context.Context, geo.BoundingBox) ([]models.Station, error) {
	return f.stations, f.err
}

var start = viewer.ViewportState{Latitude: 35.6812, Longitude: 139.7671, Zoom: 11}

func newTestModel(t *testing.T, f viewer.Fetcher) (Model, *viewer.Controller) {
	t.Helper()
	ctrl := viewer.NewController(context.Background(), f, start, viewer.Options{
		Debounce: time.Hour,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(ctrl.Close)
	tiles := geo.NewTileSource("https://tile.example.com/{z}/{x}/{y}.png", "© OpenStreetMap contributors")
	return New(context.Background(), ctrl, tiles, filepath.Join(t.TempDir(), "stations.geojson")), ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestModel_BoundsNotReadyBeforeResize(t *testing.T) {
	m, _ := newTestModel(t, staticFetcher{})

	_, ok := m.screen.VisibleBounds()
	assert.False(t, ok)
	assert.Equal(t, "loading map...", m.View())
}

func TestModel_VisibleBoundsAfterResize(t *testing.T) {
	m, _ := newTestModel(t, staticFetcher{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})

	cols, rows := m.screen.size()
	assert.Equal(t, 100, cols)
	assert.Equal(t, 40, rows)

	b, ok := m.screen.VisibleBounds()
	require.True(t, ok)
	assert.True(t, b.Contains(start.Latitude, start.Longitude))
	assert.Less(t, b.MinLat, b.MaxLat)
	assert.Less(t, b.MinLon, b.MaxLon)

	x, y := m.screen.ToScreen(start.Latitude, start.Longitude)
	assert.InDelta(t, 200, x, 1e-6)
	assert.InDelta(t, 160, y, 1e-6)
}

func TestModel_SelectAndDismiss(t *testing.T) {
	station := models.NewStation("center", "Tokyo Charge", "1 Marunouchi", start.Latitude, start.Longitude)
	m, ctrl := newTestModel(t, staticFetcher{stations: []models.Station{station}})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 45})
	ctrl.Refresh(context.Background())

	view := m.View()
	assert.Contains(t, view, "●")
	assert.Contains(t, view, "1 stations")
	assert.Contains(t, view, "© OpenStreetMap contributors")
	assert.Contains(t, view, "tiles z11")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	selected, ok := ctrl.Selected()
	require.True(t, ok)
	assert.Equal(t, "center", selected.ID())
	assert.Contains(t, m.View(), "esc to close")
	assert.Contains(t, m.View(), "Tokyo Charge")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	_, ok = ctrl.Selected()
	assert.False(t, ok)
	assert.NotContains(t, m.View(), "esc to close")
}

func TestModel_MouseHoverAndClick(t *testing.T) {
	station := models.NewStation("center", "Tokyo Charge", "", start.Latitude, start.Longitude)
	m, ctrl := newTestModel(t, staticFetcher{stations: []models.Station{station}})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})
	ctrl.Refresh(context.Background())

	m = update(t, m, tea.MouseMsg{X: 50, Y: 20 + headerLines, Action: tea.MouseActionMotion})
	assert.Equal(t, viewer.CursorPointer, ctrl.Cursor())

	m = update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionMotion})
	assert.Equal(t, viewer.CursorGrab, ctrl.Cursor())

	update(t, m, tea.MouseMsg{X: 50, Y: 20 + headerLines, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	_, ok := ctrl.Selected()
	assert.True(t, ok)
}

func TestModel_PanAndZoom(t *testing.T) {
	m, ctrl := newTestModel(t, staticFetcher{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	assert.Equal(t, 12.0, ctrl.Viewport().Zoom)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	assert.Equal(t, 10.0, ctrl.Viewport().Zoom)

	before := ctrl.Viewport()
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Greater(t, ctrl.Viewport().Longitude, before.Longitude)
	assert.InDelta(t, before.Latitude, ctrl.Viewport().Latitude, 1e-9)

	update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Greater(t, ctrl.Viewport().Latitude, before.Latitude)
}

func TestModel_BelowMinZoomAndDiagnostics(t *testing.T) {
	m, ctrl := newTestModel(t, staticFetcher{err: errors.New("fetch: HTTP 500: boom")})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})

	ctrl.Refresh(context.Background())
	assert.Contains(t, m.View(), "stations: fetch: HTTP 500: boom")

	ctrl.SetViewport(viewer.ViewportState{Latitude: 35.6812, Longitude: 139.7671, Zoom: 8})
	assert.Contains(t, m.View(), "zoom in to load stations")
}

func TestModel_ConfiguredMinZoomInHeader(t *testing.T) {
	ctrl := viewer.NewController(context.Background(), staticFetcher{}, start, viewer.Options{
		Debounce: time.Hour,
		MinZoom:  12,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(ctrl.Close)
	tiles := geo.NewTileSource("https://tile.example.com/{z}/{x}/{y}.png", "© OpenStreetMap contributors")
	m := New(context.Background(), ctrl, tiles, filepath.Join(t.TempDir(), "stations.geojson"))
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})

	assert.Contains(t, m.View(), "zoom in to load stations")
}

func TestModel_BadTileTemplateIsReported(t *testing.T) {
	ctrl := viewer.NewController(context.Background(), staticFetcher{}, start, viewer.Options{
		Debounce: time.Hour,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(ctrl.Close)
	tiles := geo.NewTileSource("https://tile.example.com/tile.png", "© OpenStreetMap contributors")

	m := New(context.Background(), ctrl, tiles, filepath.Join(t.TempDir(), "stations.geojson"))
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 45})

	assert.Contains(t, ctrl.Diagnostics(), "renderer: init: tile url template")
	assert.Contains(t, m.View(), "renderer: init: tile url template")
}

func TestModel_TerminalTooSmallIsReportedOnce(t *testing.T) {
	m, ctrl := newTestModel(t, staticFetcher{})

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 3})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 4})
	assert.Equal(t, "renderer: terminal 80x3 is too small to draw the map", ctrl.Diagnostics())

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.Contains(t, m.View(), "renderer: terminal 80x3 is too small to draw the map")
}

func TestModel_RendererErrMsgGoesToDiagnostics(t *testing.T) {
	m, ctrl := newTestModel(t, staticFetcher{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})

	m = update(t, m, RendererErrMsg{Source: "renderer", Err: errors.New("draw failed")})

	assert.Equal(t, "renderer: draw failed", ctrl.Diagnostics())
	assert.Contains(t, m.View(), "renderer: draw failed")
}

func TestModel_ExportGeoJSON(t *testing.T) {
	station := models.NewStation("center", "Tokyo Charge", "", start.Latitude, start.Longitude)
	m, ctrl := newTestModel(t, staticFetcher{stations: []models.Station{station}})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})
	ctrl.Refresh(context.Background())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.NotNil(t, cmd)
	m = update(t, next.(Model), cmd())

	data, err := os.ReadFile(m.exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
	assert.Contains(t, m.View(), "exported 1 stations")
	assert.Empty(t, ctrl.Diagnostics())
}

func TestModel_ExportFailureIsReported(t *testing.T) {
	ctrl := viewer.NewController(context.Background(), staticFetcher{}, start, viewer.Options{
		Debounce: time.Hour,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(ctrl.Close)
	tiles := geo.NewTileSource("https://tile.example.com/{z}/{x}/{y}.png", "© OpenStreetMap contributors")
	m := New(context.Background(), ctrl, tiles, filepath.Join(t.TempDir(), "missing", "stations.geojson"))
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 45})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.NotNil(t, cmd)
	m = update(t, next.(Model), cmd())

	assert.Contains(t, ctrl.Diagnostics(), "export: ")
	assert.Contains(t, m.View(), "export: ")
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, staticFetcher{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNotifier_NoProgram(t *testing.T) {
	var n Notifier
	assert.NotPanics(t, n.Notify)
}
