package tomtom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	batchPath        = "/search/2/batch.json"
	availabilityPath = "/search/2/chargingAvailability/%s.json"
	evCategory       = "electric vehicle station"
	evCategorySet    = "7309"
)

var (
	// ErrNoStatusURL is returned when a batch submission is accepted without a Location header.
	ErrNoStatusURL = errors.New("tomtom: batch submission failed: no status URL")
	// ErrBatchTimeout is returned when a batch does not complete within PollConfig.MaxWait.
	ErrBatchTimeout = errors.New("tomtom: batch processing timed out")
)

// APIError is a non-success HTTP response from the TomTom API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tomtom: status %d: %s", e.StatusCode, e.Body)
}

// PollConfig controls how an asynchronous batch is awaited.
type PollConfig struct {
	Interval     time.Duration // wait between 202 responses
	RetryDelay   time.Duration // wait after a poll request times out
	RequestLimit time.Duration // timeout of a single poll request
	MaxWait      time.Duration // give up after this long
}

// DefaultPollConfig matches the pacing TomTom recommends for batch status checks.
var DefaultPollConfig = PollConfig{
	Interval:     2 * time.Second,
	RetryDelay:   time.Second,
	RequestLimit: 10 * time.Second,
	MaxWait:      120 * time.Second,
}

// Client provides access to the TomTom Search API.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	poll       PollConfig
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewClient creates a TomTom client for baseURL (e.g. https://api.tomtom.com).
func NewClient(baseURL, apiKey string) (*Client, error) {
	return NewClientWithHTTP(baseURL, apiKey, &http.Client{Timeout: 30 * time.Second})
}

// NewClientWithHTTP creates a TomTom client with a custom HTTP client.
// Redirects are never followed: the batch API answers 303 with the status URL.
func NewClientWithHTTP(baseURL, apiKey string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("tomtom: invalid base URL %q: %w", baseURL, err)
	}

	hc := *httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		baseURL:    u,
		apiKey:     apiKey,
		httpClient: &hc,
		poll:       DefaultPollConfig,
		logger:     log.With().Str("component", "tomtom").Logger(),
		tracer:     otel.Tracer("ev-station-map/tomtom"),
	}, nil
}

// SetPollConfig overrides the batch polling pacing.
func (c *Client) SetPollConfig(p PollConfig) {
	c.poll = p
}

// ChargingAvailability returns the real-time availability document of a charging park.
func (c *Client) ChargingAvailability(ctx context.Context, availabilityID string) (map[string]any, error) {
	ctx, span := c.tracer.Start(ctx, "tomtom.ChargingAvailability",
		trace.WithAttributes(attribute.String("availability.id", availabilityID)))
	defer span.End()

	reqURL := c.resolve(fmt.Sprintf(availabilityPath, url.PathEscape(availabilityID)))
	q := reqURL.Query()
	q.Set("key", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("tomtom: failed to build availability request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("tomtom: availability request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := readAPIError(resp)
		c.logger.Error().Int("status", apiErr.StatusCode).Str("body", apiErr.Body).Msg("TomTom error")
		recordError(span, apiErr)
		return nil, apiErr
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("tomtom: failed to decode availability response: %w", err)
	}
	return doc, nil
}

func (c *Client) resolve(ref string) *url.URL {
	u, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.JoinPath(ref)
	}
	if u.IsAbs() {
		return u
	}
	base := *c.baseURL
	base.Path = strings.TrimRight(base.Path, "/") + u.Path
	base.RawQuery = u.RawQuery
	return &base
}

func readAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// cancelOnClose releases a per-request context once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
