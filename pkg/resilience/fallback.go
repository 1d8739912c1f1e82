package resilience

import "context"

// FallbackFunc handles calls the breaker rejected while open. It may return
// a degraded result (e.g. a cached value) instead of the error.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback surfaces the rejection unchanged.
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}
