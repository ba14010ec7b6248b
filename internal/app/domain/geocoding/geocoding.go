// Package geocoding searches a Nominatim-compatible place search API and
// normalizes the results into models.Location records.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/triply/internal/app/models"
	"github.com/FACorreiaa/triply/internal/app/observability/metrics"
	"github.com/FACorreiaa/triply/internal/pkg/config"
)

const (
	searchPath        = "/search"
	minQueryLength    = 2
	defaultLimit      = 10
	importanceScaling = 1_000_000
)

// Client issues one provider request per Search call. The only state shared
// between calls is the rate limiter.
type Client struct {
	baseURL     string
	userAgent   string
	language    string
	featureType string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient builds a client from the geocoding config section.
func NewClient(cfg config.GeocodingConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		language:    cfg.Language,
		featureType: cfg.FeatureType,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
	}
}

// place is one element of the provider's JSON array.
type place struct {
	PlaceID     json.Number `json:"place_id"`
	OSMID       json.Number `json:"osm_id"`
	Lat         *flexFloat  `json:"lat"`
	Lon         *flexFloat  `json:"lon"`
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Importance  *flexFloat  `json:"importance"`
	Type        string      `json:"type"`
	AddressType string      `json:"addresstype"`
	Address     address     `json:"address"`
}

type address struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	State       string `json:"state"`
	Region      string `json:"region"`
}

// flexFloat accepts both "38.72" and 38.72; anything unparsable becomes NaN
// so the record is dropped later.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = flexFloat(math.NaN())
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// Search runs a free-text place search. Cancelling ctx yields an error
// matching models.ErrCancelled; every other failure matches models.ErrProvider.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Location, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return []models.Location{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	ctx, span := otel.Tracer("triply/geocoding").Start(ctx, "geocoding.Search", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("limit", limit),
	))
	defer span.End()

	start := time.Now()
	locations, err := c.search(ctx, query, limit)
	metrics.Get().GeocodingDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome(err))))

	if err != nil {
		if errors.Is(err, models.ErrCancelled) {
			span.SetStatus(codes.Unset, "cancelled")
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "geocoding failed")
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("results", len(locations)))
	span.SetStatus(codes.Ok, "")
	return locations, nil
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]models.Location, error) {
	const op = "geocoding.Search"

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")
	if c.featureType != "" {
		params.Set("featuretype", c.featureType)
	}
	if c.language != "" {
		params.Set("accept-language", c.language)
	}

	// Waiting for a slot still counts as part of the request, so a cancelled
	// search never reaches the provider.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classify(ctx, op, fmt.Errorf("rate limit wait: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, models.NewError(models.KindProvider, op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, models.Errorf(models.KindProvider, op, "geocoding API error: %d", resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, classify(ctx, op, fmt.Errorf("decode response: %w", err))
	}

	return c.normalize(places), nil
}

// classify turns a transport error into a cancellation or provider error.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return models.NewError(models.KindCancelled, op, err)
	}
	return models.NewError(models.KindProvider, op, err)
}

func (c *Client) normalize(places []place) []models.Location {
	out := make([]models.Location, 0, len(places))
	seen := make(map[string]struct{}, len(places))

	for _, p := range places {
		loc, ok := toLocation(p)
		if !ok {
			c.logger.Debug("Dropping geocoding result without usable coordinates",
				zap.String("display_name", p.DisplayName))
			continue
		}
		if _, dup := seen[loc.ID]; dup {
			continue
		}
		seen[loc.ID] = struct{}{}
		out = append(out, loc)
	}
	return out
}

func toLocation(p place) (models.Location, bool) {
	if p.Lat == nil || p.Lon == nil {
		return models.Location{}, false
	}
	lat, lon := float64(*p.Lat), float64(*p.Lon)
	if !finite(lat) || !finite(lon) {
		return models.Location{}, false
	}

	city := firstNonEmpty(p.Address.City, p.Address.Town, p.Address.Village, p.Name)

	placeType := models.ParsePlaceType(p.Type)
	if placeType == models.PlaceOther && p.AddressType != "" {
		placeType = models.ParsePlaceType(p.AddressType)
	}

	return models.Location{
		ID:               placeID(p),
		DisplayName:      displayName(city, p.Address.Country, p.DisplayName),
		City:             city,
		Country:          p.Address.Country,
		CountryCode:      strings.ToUpper(p.Address.CountryCode),
		State:            firstNonEmpty(p.Address.State, p.Address.Region),
		Coordinates:      models.Coordinates{Lat: lat, Lon: lon},
		ImportanceScore:  importanceScore(p.Importance),
		PlaceType:        placeType,
		FormattedAddress: p.DisplayName,
	}, true
}

func placeID(p place) string {
	if id := p.PlaceID.String(); id != "" {
		return id
	}
	if id := p.OSMID.String(); id != "" {
		return id
	}
	return uuid.NewString()
}

func displayName(city, country, fallback string) string {
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case city != "":
		return city
	case country != "":
		return country
	case fallback != "":
		return fallback
	default:
		return "Unknown Location"
	}
}

func importanceScore(v *flexFloat) float64 {
	if v == nil {
		return 0
	}
	f := float64(*v)
	if !finite(f) || f <= 0 {
		return 0
	}
	return math.Round(f * importanceScaling)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrCancelled):
		return "cancelled"
	default:
		return "error"
	}
}
