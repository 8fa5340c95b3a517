// Package tui draws the station map in a terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"
	"ev-station-map/internal/viewer"
)

const (
	headerLines = 1
	footerLines = 4
	panelWidth  = 44

	minZoom = 1.0
	maxZoom = 19.0

	// fraction of the map area moved per pan key
	panStep = 0.25
)

var (
	dimFg    = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"}
	accentFg = lipgloss.Color(viewer.MarkerFill)
	errorFg  = lipgloss.Color("#EF4444")

	markerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(viewer.MarkerFill)).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(viewer.MarkerOutline)).Background(accentFg).Bold(true)
	gridStyle     = lipgloss.NewStyle().Foreground(dimFg)
	headerStyle   = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(dimFg)
	errorStyle    = lipgloss.NewStyle().Foreground(errorFg)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentFg).Padding(0, 1)
)

// ChangedMsg tells the model that controller state changed off the UI loop.
type ChangedMsg struct{}

// RendererErrMsg carries a failure of the map renderer into diagnostics.
type RendererErrMsg struct {
	Source string
	Err    error
}

type exportedMsg struct {
	path  string
	count int
}

// Notifier forwards controller changes to a running program. It is safe to
// call before the program exists and from inside Update.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// Attach sets the program that receives change messages.
func (n *Notifier) Attach(p *tea.Program) {
	n.program.Store(p)
}

// Notify queues a ChangedMsg without blocking.
func (n *Notifier) Notify() {
	if p := n.program.Load(); p != nil {
		go p.Send(ChangedMsg{})
	}
}

// Model is the bubbletea model for the map.
type Model struct {
	ctx        context.Context
	ctrl       *viewer.Controller
	tiles      geo.TileSource
	screen     *screen
	exportPath string

	width    int
	height   int
	tooSmall bool
	status   string
}

// New returns a model drawing ctrl and registers itself as the controller's
// bounds reporter. An unusable tile source is recorded in diagnostics; the
// markers are still drawn.
func New(ctx context.Context, ctrl *viewer.Controller, tiles geo.TileSource, exportPath string) Model {
	s := &screen{ctrl: ctrl}
	ctrl.SetRenderer(s)
	if err := tiles.Validate(); err != nil {
		ctrl.ReportError("renderer", fmt.Errorf("init: %w", err))
	}
	return Model{ctx: ctx, ctrl: ctrl, tiles: tiles, screen: s, exportPath: exportPath}
}

// Init triggers the first fetch for the starting camera.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("EV stations"),
		func() tea.Msg {
			m.ctrl.SetViewport(m.ctrl.Viewport())
			return nil
		},
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		tooSmall := msg.Width < 1 || msg.Height-headerLines-footerLines < 1
		if tooSmall && !m.tooSmall {
			m.ctrl.ReportError("renderer", fmt.Errorf("terminal %dx%d is too small to draw the map", msg.Width, msg.Height))
		}
		m.tooSmall = tooSmall
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.pan(0, -panStep)
		case "down", "j":
			m.pan(0, panStep)
		case "left", "h":
			m.pan(-panStep, 0)
		case "right", "l":
			m.pan(panStep, 0)
		case "+", "=":
			m.zoomBy(1)
		case "-", "_":
			m.zoomBy(-1)
		case "enter", " ":
			cols, rows := m.screen.size()
			x, y := cellCenter(cols/2, rows/2)
			m.ctrl.Click(m.screen, x, y)
		case "esc":
			m.ctrl.Dismiss()
		case "r":
			ctx, ctrl := m.ctx, m.ctrl
			cmd = func() tea.Msg {
				ctrl.Refresh(ctx)
				return nil
			}
		case "e":
			cmd = exportLayer(m.ctrl.Layer(), m.exportPath)
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case RendererErrMsg:
		m.ctrl.ReportError(msg.Source, msg.Err)
		m.status = ""
	case exportedMsg:
		m.status = fmt.Sprintf("exported %d stations to %s", msg.count, msg.path)
	case ChangedMsg:
	}

	m.layout()
	return m, cmd
}

// exportLayer writes the markers as GeoJSON.
func exportLayer(layer viewer.Layer, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := layer.GeoJSON()
		if err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
		if err != nil {
			return RendererErrMsg{Source: "export", Err: err}
		}
		return exportedMsg{path: path, count: len(layer.Markers)}
	}
}

// layout sizes the map area for the terminal and the detail panel.
func (m Model) layout() {
	cols := m.width
	if _, ok := m.ctrl.Selected(); ok && cols > panelWidth*2 {
		cols -= panelWidth
	}
	m.screen.resize(cols, m.height-headerLines-footerLines)
}

func (m Model) pan(fx, fy float64) {
	cols, rows := m.screen.size()
	state := m.ctrl.Viewport()
	x, y := geo.Project(state.Latitude, state.Longitude, state.Zoom)
	x += fx * float64(cols) * cellWidth
	y += fy * float64(rows) * cellHeight
	state.Latitude, state.Longitude = geo.Unproject(x, y, state.Zoom)
	m.ctrl.SetViewport(state)
}

func (m Model) zoomBy(delta float64) {
	state := m.ctrl.Viewport()
	zoom := math.Max(minZoom, math.Min(maxZoom, state.Zoom+delta))
	if zoom == state.Zoom {
		return
	}
	state.Zoom = zoom
	m.ctrl.SetViewport(state)
}

func (m Model) mouse(msg tea.MouseMsg) {
	cols, rows := m.screen.size()
	col, row := msg.X, msg.Y-headerLines
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return
	}
	x, y := cellCenter(col, row)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.zoomBy(1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.zoomBy(-1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.ctrl.Click(m.screen, x, y)
	case msg.Action == tea.MouseActionMotion:
		m.ctrl.Hover(m.screen, x, y)
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading map..."
	}

	mapView := m.renderMap()
	if st, ok := m.ctrl.Selected(); ok {
		_, rows := m.screen.size()
		mapView = lipgloss.JoinHorizontal(lipgloss.Top, mapView, m.renderPanel(st, rows))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		mapView,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	state := m.ctrl.Viewport()
	status := fmt.Sprintf("%d stations", len(m.ctrl.Stations()))
	if state.Zoom < m.ctrl.MinZoom() {
		status = "zoom in to load stations"
	}
	if m.ctrl.Loading() {
		status += " (loading)"
	}
	if m.status != "" {
		status += "  " + m.status
	}
	return headerStyle.Render("EV stations") + dimStyle.Render(fmt.Sprintf(
		"  %.4f, %.4f  z%.0f  %s  cursor:%s",
		state.Latitude, state.Longitude, state.Zoom, status, m.ctrl.Cursor()))
}

func (m Model) renderMap() string {
	cols, rows := m.screen.size()
	if cols <= 0 || rows <= 0 {
		return ""
	}

	// marker index per cell, later markers on top
	cells := make([][]int, rows)
	for r := range cells {
		cells[r] = make([]int, cols)
		for c := range cells[r] {
			cells[r][c] = -1
		}
	}
	layer := m.ctrl.Layer()
	for i, mk := range layer.Markers {
		col, row, ok := cellOf(m.screen.ToScreen(mk.Position.Lat, mk.Position.Lon))
		if ok && col < cols && row < rows {
			cells[row][col] = i
		}
	}
	selectedID := ""
	if st, ok := m.ctrl.Selected(); ok {
		selectedID = st.ID()
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			switch i := cells[r][c]; {
			case i >= 0 && selectedID != "" && layer.Markers[i].Station.ID() == selectedID:
				b.WriteString(selectedStyle.Render("●"))
			case i >= 0:
				b.WriteString(markerStyle.Render("●"))
			case r == rows/2 && c == cols/2:
				b.WriteString(dimStyle.Render("+"))
			case r%2 == 0 && c%4 == 0:
				b.WriteString(gridStyle.Render("·"))
			default:
				b.WriteByte(' ')
			}
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderPanel(st models.Station, rows int) string {
	name := st.Name()
	if name == "" {
		name = st.ID()
	}
	lines := strings.Split(strings.TrimRight(viewer.RenderDetail(st), "\n"), "\n")
	body := append([]string{headerStyle.Render(name), dimStyle.Render("esc to close")}, lines...)
	// the border takes two rows
	if limit := rows - 2; limit > 2 && len(body) > limit {
		body = body[:limit]
	}
	return panelStyle.Width(panelWidth - 2).Render(strings.Join(body, "\n"))
}

func (m Model) renderFooter() string {
	lines := []string{dimStyle.Render(m.tiles.Attribution), m.tileStatus()}

	diag := m.ctrl.Diagnostics()
	var recent []string
	if diag != "" {
		all := strings.Split(diag, "\n")
		recent = all[max(0, len(all)-2):]
	}
	for i := 0; i < 2; i++ {
		if i < len(recent) {
			lines = append(lines, errorStyle.Render(truncate(recent[i], m.width)))
		} else {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) tileStatus() string {
	bounds, ok := m.screen.VisibleBounds()
	if !ok {
		return ""
	}
	zoom := math.Floor(m.ctrl.Viewport().Zoom)
	tiles := m.tiles.TilesFor(bounds, zoom)
	if len(tiles) == 0 {
		return dimStyle.Render("tiles: none")
	}
	return dimStyle.Render(truncate(fmt.Sprintf("tiles z%.0f: %d  %s", zoom, len(tiles), m.tiles.URL(tiles[0])), m.width))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
