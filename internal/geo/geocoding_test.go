package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridealong/event-carpool/pkg/common"
)

// fakeCache is an in-memory stand-in for the redis client.
type fakeCache struct {
	mu    sync.Mutex
	items map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]string{}}
}

func (f *fakeCache) SetWithExpiration(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value.(string)
	return nil
}

func (f *fakeCache) GetString(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[key], nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.items, k)
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[key]
	return ok, nil
}

func (f *fakeCache) Expire(_ context.Context, _ string, _ time.Duration) error { return nil }
func (f *fakeCache) Close() error                                             { return nil }

func TestForwardGeocode(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "123 Main St, Springfield", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"39.7817","lon":"-89.6501","display_name":"123 Main St, Springfield, IL"}]`))
	}))
	defer server.Close()

	svc := NewGeocodingService(server.URL, "eventcarpool-test", 2*time.Second, newFakeCache())

	result, err := svc.ForwardGeocode(context.Background(), "123 Main St, Springfield")
	require.NoError(t, err)
	assert.InDelta(t, 39.7817, result.Latitude, 0.0001)
	assert.InDelta(t, -89.6501, result.Longitude, 0.0001)
	assert.Equal(t, "123 Main St, Springfield, IL", result.FormattedAddress)
	assert.NotEmpty(t, result.H3Cell)

	// Second lookup should come from cache, not the upstream.
	_, err = svc.ForwardGeocode(context.Background(), "123 Main St, Springfield")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestForwardGeocodeEmptyAddress(t *testing.T) {
	svc := NewGeocodingService("http://unused", "test", time.Second, nil)

	_, err := svc.ForwardGeocode(context.Background(), "   ")
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestForwardGeocodeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	svc := NewGeocodingService(server.URL, "test", time.Second, nil)

	_, err := svc.ForwardGeocode(context.Background(), "nowhere at all")
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestForwardGeocodeUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewGeocodingService(server.URL, "test", time.Second, nil)

	_, err := svc.ForwardGeocode(context.Background(), "123 Main St")
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
}

func TestReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lat":"40.7128","lon":"-74.0060","display_name":"New York, NY"}`))
	}))
	defer server.Close()

	svc := NewGeocodingService(server.URL, "test", time.Second, nil)

	result, err := svc.ReverseGeocode(context.Background(), 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Equal(t, "New York, NY", result.FormattedAddress)
}

func TestReverseGeocodeRejectsOutOfRange(t *testing.T) {
	svc := NewGeocodingService("http://unused", "test", time.Second, nil)

	_, err := svc.ReverseGeocode(context.Background(), 95, 0)
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestCellString(t *testing.T) {
	cell := CellString(40.7128, -74.0060, H3ResolutionMatching)
	assert.NotEmpty(t, cell)

	// Same point maps to the same cell.
	assert.Equal(t, cell, CellString(40.7128, -74.0060, H3ResolutionMatching))

	// A point far away maps elsewhere.
	assert.NotEqual(t, cell, CellString(34.0522, -118.2437, H3ResolutionMatching))
}

func TestSameCell(t *testing.T) {
	assert.True(t, SameCell(40.7128, -74.0060, 40.71281, -74.00601, H3ResolutionNeighborhood))
	assert.False(t, SameCell(40.7128, -74.0060, 34.0522, -118.2437, H3ResolutionNeighborhood))
}
