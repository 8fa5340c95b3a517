package tomtom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BatchItem is one query of a batch request.
type BatchItem struct {
	Query string `json:"query"`
}

// BatchResult is one entry of a completed batch, in submission order.
type BatchResult struct {
	StatusCode int             `json:"statusCode"`
	Response   json.RawMessage `json:"response"`
}

// BatchResponse is the body of a completed batch.
type BatchResponse struct {
	FormatVersion string        `json:"formatVersion"`
	BatchItems    []BatchResult `json:"batchItems"`
}

type searchResponse struct {
	Results []models.Station `json:"results"`
}

// Stations decodes the search results of a successful item.
func (r BatchResult) Stations() ([]models.Station, error) {
	if len(r.Response) == 0 {
		return nil, nil
	}
	var sr searchResponse
	if err := json.Unmarshal(r.Response, &sr); err != nil {
		return nil, fmt.Errorf("tomtom: failed to decode batch item: %w", err)
	}
	return sr.Results, nil
}

// OK reports whether the item succeeded and carries a response.
func (r BatchResult) OK() bool {
	return r.StatusCode == http.StatusOK && len(r.Response) > 0 && string(r.Response) != "null"
}

// EVStationQuery builds the batch item for a category search around a point.
// Batch item paths omit the service version and never carry the API key.
func EVStationQuery(p geo.SearchPoint, radiusMeters int) BatchItem {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("limit", "100")
	params.Set("categorySet", evCategorySet)
	params.Set("relatedPois", "off")
	params.Set("language", "NGT")

	return BatchItem{Query: "/categorySearch/" + url.PathEscape(evCategory) + ".json?" + params.Encode()}
}

// SearchBatch submits the items as an asynchronous batch and waits for the result.
func (c *Client) SearchBatch(ctx context.Context, items []BatchItem) (*BatchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "tomtom.SearchBatch",
		trace.WithAttributes(attribute.Int("batch.items", len(items))))
	defer span.End()

	statusURL, err := c.SubmitBatch(ctx, items)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	c.logger.Info().Str("location", statusURL).Msg("batch submitted, polling")

	res, err := c.PollBatch(ctx, statusURL)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return res, nil
}

// SubmitBatch posts the batch and returns the status URL from the Location header.
func (c *Client) SubmitBatch(ctx context.Context, items []BatchItem) (string, error) {
	body, err := json.Marshal(struct {
		BatchItems []BatchItem `json:"batchItems"`
	}{BatchItems: items})
	if err != nil {
		return "", fmt.Errorf("tomtom: failed to encode batch: %w", err)
	}

	reqURL := c.resolve(batchPath)
	q := reqURL.Query()
	q.Set("key", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("tomtom: failed to build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tomtom: batch submission failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusSeeOther:
	default:
		apiErr := readAPIError(resp)
		c.logger.Error().Int("status", apiErr.StatusCode).Str("body", apiErr.Body).Msg("TomTom batch error")
		return "", apiErr
	}

	location := resp.Header.Get("Location")
	if location == "" {
		c.logger.Error().Msg("no Location header in batch submission response")
		return "", ErrNoStatusURL
	}
	return c.resolve(location).String(), nil
}

// PollBatch checks the status URL until the batch completes, fails, or
// PollConfig.MaxWait elapses. A poll request that times out is retried.
func (c *Client) PollBatch(ctx context.Context, statusURL string) (*BatchResponse, error) {
	start := time.Now()

	for {
		if time.Since(start) > c.poll.MaxWait {
			return nil, ErrBatchTimeout
		}

		resp, err := c.pollOnce(ctx, statusURL)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				c.logger.Warn().Msg("timeout while polling batch status, retrying")
				if err := sleep(ctx, c.poll.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("tomtom: batch status request failed: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var out BatchResponse
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("tomtom: failed to decode batch response: %w", err)
			}
			return &out, nil
		case http.StatusAccepted:
			resp.Body.Close()
			if err := sleep(ctx, c.poll.Interval); err != nil {
				return nil, err
			}
		default:
			apiErr := readAPIError(resp)
			resp.Body.Close()
			c.logger.Error().Int("status", apiErr.StatusCode).Str("body", apiErr.Body).Msg("TomTom batch error")
			return nil, apiErr
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, statusURL string) (*http.Response, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.poll.RequestLimit)

	req, err := http.NewRequestWithContext(pollCtx, http.MethodGet, statusURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
