package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/triplore/triplore/app/observability/metrics"
)

// Client talks to an OpenStreetMap Nominatim instance. Per Nominatim usage
// policy every request carries an identifying User-Agent and, when
// configured, a contact email.
type Client struct {
	baseURL    string
	userAgent  string
	email      string
	logger     *slog.Logger
	httpClient *http.Client
}

// Result is one normalized geocoding answer. Pointer fields are nil when
// Nominatim had no answer for them.
type Result struct {
	DisplayName *string        `json:"display_name"`
	Address     map[string]any `json:"address,omitempty"`
	Latitude    *float64       `json:"lat,omitempty"`
	Longitude   *float64       `json:"lon,omitempty"`
}

func NewClient(baseURL, userAgent, email string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if userAgent == "" {
		userAgent = "triplore/1.0"
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		email:     email,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ReverseGeocode resolves coordinates to an address.
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*Result, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("addressdetails", "1")

	body, err := c.get(ctx, "/reverse", params)
	if err != nil {
		return nil, err
	}

	var raw struct {
		DisplayName *string        `json:"display_name"`
		Address     map[string]any `json:"address"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal reverse geocode response: %w", err)
	}
	return &Result{
		DisplayName: raw.DisplayName,
		Address:     raw.Address,
	}, nil
}

// Search resolves a free-text query to the best matching location, or a
// Result with nil fields when nothing matched.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		DisplayName *string        `json:"display_name"`
		Lat         string         `json:"lat"`
		Lon         string         `json:"lon"`
		Address     map[string]any `json:"address"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}
	if len(raw) == 0 {
		return &Result{}, nil
	}

	first := raw[0]
	result := &Result{
		DisplayName: first.DisplayName,
		Address:     first.Address,
	}
	if lat, err := strconv.ParseFloat(first.Lat, 64); err == nil {
		result.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(first.Lon, 64); err == nil {
		result.Longitude = &lon
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.email != "" {
		params.Set("email", c.email)
	}
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	metrics.Get().GeocodeRequestsTotal.Add(ctx, 1)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Nominatim request failed",
			slog.String("endpoint", endpoint), slog.Any("error", err))
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "Nominatim error response",
			slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint))
		return nil, fmt.Errorf("nominatim error: status %d", resp.StatusCode)
	}
	return body, nil
}
