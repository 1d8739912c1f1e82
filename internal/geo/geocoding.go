package geo

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

	"go.uber.org/zap"

	"github.com/ridealong/event-carpool/pkg/common"
	"github.com/ridealong/event-carpool/pkg/logger"
	redisclient "github.com/ridealong/event-carpool/pkg/redis"
	"github.com/ridealong/event-carpool/pkg/resilience"
)

const (
	geocodeCachePrefix = "geocode:"
	defaultCacheTTL    = 24 * time.Hour
)

// GeocodingResult represents a resolved address.
type GeocodingResult struct {
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	H3Cell           string  `json:"h3_cell,omitempty"`
}

// GeocodingService resolves addresses against a Nominatim-style endpoint.
// Address resolution happens in the transport layer only: the matching core
// receives coordinates and never performs I/O itself. A failed or empty
// geocode surfaces as a nil coordinate on the participant, which the core
// treats as an unreachable stop rather than an error.
type GeocodingService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	redis      redisclient.ClientInterface
	breaker    *resilience.CircuitBreaker
	cacheTTL   time.Duration
}

// NewGeocodingService creates a new geocoding service. redis may be nil;
// results are then not cached.
func NewGeocodingService(baseURL, userAgent string, timeout time.Duration, redis redisclient.ClientInterface) *GeocodingService {
	return &GeocodingService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		redis:      redis,
		cacheTTL:   defaultCacheTTL,
	}
}

// SetCircuitBreaker enables circuit breaker protection for external API calls.
func (g *GeocodingService) SetCircuitBreaker(cb *resilience.CircuitBreaker) {
	g.breaker = cb
}

// SetCacheTTL overrides how long geocoding results stay cached.
func (g *GeocodingService) SetCacheTTL(ttl time.Duration) {
	g.cacheTTL = ttl
}

// nominatimPlace is the subset of the Nominatim response the service reads.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ForwardGeocode converts an address string to coordinates.
func (g *GeocodingService) ForwardGeocode(ctx context.Context, address string) (*GeocodingResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, common.NewBadRequestError("address is required", nil)
	}

	cacheKey := fmt.Sprintf("%sforward:%s", geocodeCachePrefix, strings.ToLower(address))
	if cached, ok := g.getCached(ctx, cacheKey); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	result, err := g.fetchPlace(ctx, fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	g.cache(ctx, cacheKey, result)
	return result, nil
}

// ReverseGeocode converts coordinates to an address.
func (g *GeocodingService) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*GeocodingResult, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, common.NewBadRequestError("coordinates out of range", nil)
	}

	cacheKey := fmt.Sprintf("%sreverse:%.6f,%.6f", geocodeCachePrefix, latitude, longitude)
	if cached, ok := g.getCached(ctx, cacheKey); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', 6, 64))
	params.Set("format", "json")

	result, err := g.fetchReverse(ctx, fmt.Sprintf("%s/reverse?%s", g.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	g.cache(ctx, cacheKey, result)
	return result, nil
}

func (g *GeocodingService) fetchPlace(ctx context.Context, reqURL string) (*GeocodingResult, error) {
	body, err := g.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, common.NewInternalError("failed to decode geocoder response", err)
	}
	if len(places) == 0 {
		return nil, common.NewNotFoundError("no results for address", nil)
	}
	return placeToResult(places[0])
}

func (g *GeocodingService) fetchReverse(ctx context.Context, reqURL string) (*GeocodingResult, error) {
	body, err := g.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var place nominatimPlace
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, common.NewInternalError("failed to decode geocoder response", err)
	}
	if place.Lat == "" || place.Lon == "" {
		return nil, common.NewNotFoundError("no address at coordinates", nil)
	}
	return placeToResult(place)
}

func placeToResult(place nominatimPlace) (*GeocodingResult, error) {
	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, common.NewInternalError("geocoder returned invalid latitude", err)
	}
	lng, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, common.NewInternalError("geocoder returned invalid longitude", err)
	}

	return &GeocodingResult{
		FormattedAddress: place.DisplayName,
		Latitude:         lat,
		Longitude:        lng,
		H3Cell:           CellString(lat, lng, H3ResolutionMatching),
	}, nil
}

// doRequest performs the upstream call, through the circuit breaker when one
// is configured.
func (g *GeocodingService) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	call := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	}

	if g.breaker == nil {
		body, err := call()
		if err != nil {
			return nil, common.NewServiceUnavailableError("geocoding service unavailable", err)
		}
		return body, nil
	}

	result, err := g.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return call()
	})
	if err != nil {
		return nil, common.NewServiceUnavailableError("geocoding service unavailable", err)
	}
	return result.([]byte), nil
}

func (g *GeocodingService) getCached(ctx context.Context, key string) (*GeocodingResult, bool) {
	if g.redis == nil {
		return nil, false
	}
	raw, err := g.redis.GetString(ctx, key)
	if err != nil || raw == "" {
		return nil, false
	}
	var result GeocodingResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (g *GeocodingService) cache(ctx context.Context, key string, result *GeocodingResult) {
	if g.redis == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := g.redis.SetWithExpiration(ctx, key, string(data), g.cacheTTL); err != nil {
		logger.DebugContext(ctx, "failed to cache geocoding result",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
