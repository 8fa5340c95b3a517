package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"
)

// DefaultMinZoom is the zoom below which no fetch is made.
const DefaultMinZoom = 9.0

const stationsPath = "/api/ev-stations"

// StationFetcher queries the backend for the stations inside a bounding box.
type StationFetcher struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewFetcher returns a fetcher for the backend at baseURL.
func NewFetcher(baseURL string) (*StationFetcher, error) {
	return NewFetcherWithHTTP(baseURL, &http.Client{Timeout: 30 * time.Second})
}

// NewFetcherWithHTTP is NewFetcher with a caller supplied HTTP client.
func NewFetcherWithHTTP(baseURL string, httpClient *http.Client) (*StationFetcher, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("viewer: invalid api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("viewer: invalid api url %q", baseURL)
	}
	return &StationFetcher{baseURL: u, httpClient: httpClient}, nil
}

type stationsResponse struct {
	Results []json.RawMessage `json:"results"`
}

// Fetch issues one request for bounds and returns the stations that have a
// usable position. Records without one are dropped silently.
func (f *StationFetcher) Fetch(ctx context.Context, bounds geo.BoundingBox) ([]models.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(bounds), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload stationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fetch: decode response: %w", err)
	}

	return filterStations(payload.Results), nil
}

func (f *StationFetcher) requestURL(b geo.BoundingBox) string {
	u := *f.baseURL
	u.Path += stationsPath
	q := url.Values{}
	q.Set("min_lat", formatCoord(b.MinLat))
	q.Set("min_lon", formatCoord(b.MinLon))
	q.Set("max_lat", formatCoord(b.MaxLat))
	q.Set("max_lon", formatCoord(b.MaxLon))
	u.RawQuery = q.Encode()
	return u.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func filterStations(raw []json.RawMessage) []models.Station {
	stations := make([]models.Station, 0, len(raw))
	for _, r := range raw {
		var s models.Station
		if err := json.Unmarshal(r, &s); err != nil || s == nil {
			continue
		}
		if _, ok := s.Position(); !ok {
			continue
		}
		stations = append(stations, s)
	}
	return stations
}
