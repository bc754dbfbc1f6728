package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dayoung-oh/lunchspin/internal/domain"
)

const (
	defaultInterpreterURL = "https://overpass-api.de/api/interpreter"
	defaultQueryTimeout   = 25

	fallbackCategory = "Restaurant"
)

// ErrUpstream indicates an Overpass API failure.
var ErrUpstream = errors.New("error when trying to get response from overpass api")

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the Overpass interpreter for restaurant-like nodes.
type Client struct {
	httpClient HTTPClient
	endpoint   string
	userAgent  string
	rng        *rand.Rand
}

// Option applies Client options.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEndpoint replaces the default interpreter endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithRand replaces the random source used for fabricated ratings.
func WithRand(rng *rand.Rand) Option {
	return func(c *Client) {
		c.rng = rng
	}
}

// NewClient creates a production Overpass gateway client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   defaultInterpreterURL,
		userAgent:  "lunchspin/1.0",
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type element struct {
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type interpreterResponse struct {
	Elements []element `json:"elements"`
}

// buildQuery returns one composite Overpass QL query covering the three
// place classes scoped to the requested radius around the center.
func buildQuery(center domain.Location, radiusMeters int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", defaultQueryTimeout)
	for _, amenity := range []string{"restaurant", "cafe", "fast_food"} {
		fmt.Fprintf(&b, "  node[\"amenity\"=%q](around:%d,%f,%f);\n", amenity, radiusMeters, center.Lat, center.Lon)
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;\n")
	return b.String()
}

// Fetch queries restaurant, cafe and fast-food nodes around center and
// maps them into candidates with derived distance and walk metrics.
// Nodes without a usable name are dropped.
func (c *Client) Fetch(ctx context.Context, center domain.Location, radiusMeters int) ([]domain.Candidate, error) {
	query := buildQuery(center, radiusMeters)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "text/plain")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: status=%d body=%q", ErrUpstream, res.StatusCode, string(body))
	}

	var payload interpreterResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response body: %v", ErrUpstream, err)
	}

	candidates := make([]domain.Candidate, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}
		distance := domain.DistanceMeters(center, domain.Location{Lat: el.Lat, Lon: el.Lon})
		candidates = append(candidates, domain.Candidate{
			ID:             strconv.FormatInt(el.ID, 10),
			Name:           name,
			Category:       categoryFromTags(el.Tags),
			Lat:            el.Lat,
			Lon:            el.Lon,
			DistanceMeters: math.Round(distance),
			WalkMinutes:    domain.WalkMinutes(distance),
			Rating:         c.ratingFromTags(el.Tags),
		})
	}
	return candidates, nil
}

// categoryFromTags picks the most specific label available.
func categoryFromTags(tags map[string]string) string {
	if cuisine := strings.TrimSpace(tags["cuisine"]); cuisine != "" {
		return cuisine
	}
	if amenity := strings.TrimSpace(tags["amenity"]); amenity != "" {
		return amenity
	}
	return fallbackCategory
}

// ratingFromTags parses a provider rating when one exists; otherwise it
// fabricates one in [3.0, 5.0]. OSM nodes almost never carry ratings, so
// the fabricated value is the common case.
func (c *Client) ratingFromTags(tags map[string]string) float64 {
	if raw := strings.TrimSpace(tags["rating"]); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 1.0 && value <= 5.0 {
			return value
		}
	}
	return math.Round((3+c.rng.Float64()*2)*10) / 10
}
