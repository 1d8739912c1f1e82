package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/ridealong/event-carpool/pkg/logger"
)

// ErrCircuitOpen is returned when the breaker rejects a call and no fallback
// is configured.
var ErrCircuitOpen = errors.New("circuit breaker open")

const defaultFailureThreshold = 5

// Operation is a call guarded by the circuit breaker.
type Operation func(ctx context.Context) (interface{}, error)

// Settings configures one named breaker. A zero FailureThreshold falls back
// to the package default.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// CircuitBreaker wraps gobreaker with state-change logging and an optional
// fallback for open-circuit rejections. A nil *CircuitBreaker executes
// operations directly, so callers can leave the breaker unconfigured.
type CircuitBreaker struct {
	breaker  *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker builds a breaker from the given settings.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = defaultFailureThreshold
	}

	cfg := gobreaker.Settings{
		Name:     settings.Name,
		Timeout:  settings.Timeout,
		Interval: settings.Interval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			recordBreakerStateChange(name, from, to)
			logger.Get().Info("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	if settings.SuccessThreshold > 0 {
		cfg.MaxRequests = settings.SuccessThreshold
	}

	return &CircuitBreaker{
		breaker:  gobreaker.NewCircuitBreaker(cfg),
		fallback: fallback,
	}
}

// Execute runs the operation through the breaker. Open-circuit rejections go
// to the fallback when one exists, otherwise surface as ErrCircuitOpen.
func (c *CircuitBreaker) Execute(ctx context.Context, operation Operation) (interface{}, error) {
	if operation == nil {
		return nil, errors.New("operation cannot be nil")
	}
	if c == nil || c.breaker == nil {
		return operation(ctx)
	}

	recordBreakerRequest(c.breaker.Name())
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return operation(ctx)
	})
	if err == nil {
		return result, nil
	}
	recordBreakerFailure(c.breaker.Name())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		recordBreakerFallback(c.breaker.Name())
		if c.fallback != nil {
			return c.fallback(ctx, err)
		}
		return nil, ErrCircuitOpen
	}
	return nil, err
}

// Allow reports whether a call would currently be admitted.
func (c *CircuitBreaker) Allow() bool {
	if c == nil || c.breaker == nil {
		return true
	}
	return c.breaker.State() != gobreaker.StateOpen
}
