package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"
)

// Fetcher loads the stations inside a bounding box.
type Fetcher interface {
	Fetch(ctx context.Context, bounds geo.BoundingBox) ([]models.Station, error)
}

// Options tune a Controller. Zero values take the defaults.
type Options struct {
	Debounce time.Duration
	MinZoom  float64
	// OnChange is called after any state the UI renders has changed.
	// It must not block.
	OnChange func()
	Logger   zerolog.Logger
}

// Controller drives the viewer: it debounces camera moves into fetches and
// owns the station list, selection, hover state and diagnostics.
type Controller struct {
	ctx       context.Context
	fetcher   Fetcher
	viewport  *Viewport
	debouncer *Debouncer
	minZoom   float64
	onChange  func()
	logger    zerolog.Logger

	mu       sync.Mutex
	renderer BoundsReporter
	stations []models.Station
	layer    Layer
	hovered  bool
	seq      uint64
	applied  uint64
	inFlight int

	selection   Selection
	diagnostics Diagnostics
}

// NewController returns a controller starting at initial. Fetches run with
// ctx; cancel it to abort requests in flight.
func NewController(ctx context.Context, fetcher Fetcher, initial ViewportState, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinZoom <= 0 {
		opts.MinZoom = DefaultMinZoom
	}
	return &Controller{
		ctx:       ctx,
		fetcher:   fetcher,
		viewport:  NewViewport(initial),
		debouncer: NewDebouncer(opts.Debounce),
		minZoom:   opts.MinZoom,
		onChange:  opts.OnChange,
		logger:    opts.Logger.With().Str("component", "viewer").Logger(),
	}
}

// SetRenderer attaches the live renderer used for exact bounds.
func (c *Controller) SetRenderer(r BoundsReporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderer = r
}

// Viewport returns the current camera.
func (c *Controller) Viewport() ViewportState {
	return c.viewport.Get()
}

// SetViewport records a camera move and schedules a debounced fetch.
func (c *Controller) SetViewport(s ViewportState) {
	c.viewport.Set(s)
	c.debouncer.Trigger(func() { c.Refresh(c.ctx) })
	c.notify()
}

// Refresh fetches the stations for the current camera right away. Below the
// minimum zoom it does nothing. A failed fetch keeps the previous list and
// adds a diagnostics entry; a response older than one already applied is
// discarded.
func (c *Controller) Refresh(ctx context.Context) {
	state := c.viewport.Get()
	if state.Zoom < c.minZoom {
		c.logger.Debug().Float64("zoom", state.Zoom).Msg("zoom below minimum, skipping fetch")
		return
	}

	c.mu.Lock()
	bounds := ResolveBounds(state, c.renderer)
	c.seq++
	seq := c.seq
	c.inFlight++
	c.mu.Unlock()
	c.notify()

	c.logger.Debug().Uint64("seq", seq).Stringer("bounds", bounds).Msg("fetching stations")
	stations, err := c.fetcher.Fetch(ctx, bounds)

	c.mu.Lock()
	c.inFlight--
	switch {
	case err != nil:
		c.mu.Unlock()
		c.logger.Warn().Err(err).Uint64("seq", seq).Msg("station fetch failed")
		c.diagnostics.Add("stations", err)
	case seq < c.applied:
		c.mu.Unlock()
		c.logger.Debug().Uint64("seq", seq).Uint64("applied", c.applied).Msg("discarding stale response")
	default:
		c.applied = seq
		c.stations = stations
		c.layer = BuildLayer(stations)
		c.mu.Unlock()
		c.logger.Debug().Uint64("seq", seq).Int("count", len(stations)).Msg("stations updated")
	}
	c.notify()
}

// MinZoom returns the zoom below which no fetch is made.
func (c *Controller) MinZoom() float64 {
	return c.minZoom
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Stations returns the current station list.
func (c *Controller) Stations() []models.Station {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Layer returns the markers for the current station list.
func (c *Controller) Layer() Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layer
}

// Click selects the marker under the screen point, if there is one.
func (c *Controller) Click(p Projector, x, y float64) bool {
	m, ok := c.Layer().HitTest(p, x, y)
	if ok {
		c.Select(m.Station)
	}
	return ok
}

// Select opens the detail panel for s.
func (c *Controller) Select(s models.Station) {
	c.selection.Select(s)
	c.notify()
}

// Dismiss closes the detail panel.
func (c *Controller) Dismiss() {
	c.selection.Dismiss()
	c.notify()
}

// Selected returns the station in the detail panel.
func (c *Controller) Selected() (models.Station, bool) {
	return c.selection.Selected()
}

// Hover updates the hover state from the screen point.
func (c *Controller) Hover(p Projector, x, y float64) {
	_, over := c.Layer().HitTest(p, x, y)

	c.mu.Lock()
	changed := c.hovered != over
	c.hovered = over
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Cursor returns the cursor for the current hover state.
func (c *Controller) Cursor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Cursor(c.hovered)
}

// ReportError records a failure outside the fetch path, such as the
// renderer failing to start.
func (c *Controller) ReportError(source string, err error) {
	if err == nil {
		return
	}
	c.logger.Warn().Err(err).Str("source", source).Msg("viewer error")
	c.diagnostics.Add(source, err)
	c.notify()
}

// Diagnostics returns every swallowed error, one per line.
func (c *Controller) Diagnostics() string {
	return c.diagnostics.String()
}

// Close cancels any pending debounced fetch.
func (c *Controller) Close() {
	c.debouncer.Stop()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
