package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"airport_sim/internal/models"
)

// DefaultAPIBaseURL is the AviationWeather.gov data API
const DefaultAPIBaseURL = "https://aviationweather.gov/api/data"

// Client fetches METAR reports over HTTP
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxRetries      int
	gustThresholdKt int
	retryBackoff    time.Duration
}

// metarRecord is one entry of the AviationWeather JSON METAR response
type metarRecord struct {
	ICAOID  string `json:"icaoId"`
	ObsTime int64  `json:"obsTime"`
	RawOb   string `json:"rawOb"`
}

func NewClient(baseURL string, timeout time.Duration, maxRetries, gustThresholdKt int) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Client{
		baseURL:         baseURL,
		httpClient:      &http.Client{Timeout: timeout},
		maxRetries:      maxRetries,
		gustThresholdKt: gustThresholdKt,
		retryBackoff:    500 * time.Millisecond,
	}
}

// FetchLatest returns the most recent decoded METAR for station
func (c *Client) FetchLatest(ctx context.Context, station string) (*models.Observation, error) {
	endpoint := fmt.Sprintf("%s/metar?ids=%s&format=json", c.baseURL, url.QueryEscape(station))

	var records []metarRecord
	if err := c.fetchWithRetry(ctx, endpoint, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no METAR data found for %s", station)
	}

	rec := records[0]
	obs, err := ParseMETAR(rec.RawOb, c.gustThresholdKt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse METAR for %s: %w", station, err)
	}
	if rec.ObsTime > 0 {
		obs.ObservedAt = time.Unix(rec.ObsTime, 0).UTC()
	}
	return obs, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, endpoint string, target any) error {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("Retrying METAR fetch", "url", endpoint, "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		lastErr = c.fetch(ctx, endpoint, target)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("METAR request failed", "url", endpoint, "attempt", attempt+1, "error", lastErr)
	}

	return fmt.Errorf("failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) fetch(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request to weather API: %w", err)
	}
	defer resp.Body.Close()

	// The API answers 204 when the station has no recent reports
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}
