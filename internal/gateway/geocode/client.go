package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dayoung-oh/lunchspin/internal/domain"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	defaultResultLimit  = 5
	minQueryLength      = 2
)

// ErrLocationLookup is returned when geocoding fails.
var ErrLocationLookup = errors.New("error when trying to get location")

// Client resolves free-text address queries to coordinates.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", text, err)
		}
		*c = coordinate(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*c = coordinate(value)
		return nil
	}

	return fmt.Errorf("coordinate must be a string or number")
}

type nominatimResult struct {
	Lat         coordinate `json:"lat"`
	Lon         coordinate `json:"lon"`
	DisplayName string     `json:"display_name"`
}

// NewClient creates a geocoding client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultNominatimURL,
	}
}

// Search resolves an address query using OSM Nominatim. Queries shorter
// than two characters resolve to an empty result without a request.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Location, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return []domain.Location{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(defaultResultLimit))
	uri := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "lunchspin/1.0")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, ErrLocationLookup
	}

	var payload []nominatimResult
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}

	locations := make([]domain.Location, 0, len(payload))
	for _, result := range payload {
		locations = append(locations, domain.Location{
			Lat:     float64(result.Lat),
			Lon:     float64(result.Lon),
			Address: result.DisplayName,
		})
	}
	return locations, nil
}

// Get resolves an address to its best-match location.
func (c *Client) Get(ctx context.Context, address string) (domain.Location, error) {
	locations, err := c.Search(ctx, address)
	if err != nil {
		return domain.Location{}, err
	}
	if len(locations) == 0 {
		return domain.Location{}, ErrLocationLookup
	}
	return locations[0], nil
}
