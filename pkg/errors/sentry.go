package errors

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig holds the Sentry SDK settings for one service instance.
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
	EnableTracing    bool
	ServerName       string
	AttachStacktrace bool
}

// DefaultSentryConfig reads the Sentry settings from the environment. Sample
// rates default to full capture outside production.
func DefaultSentryConfig() *SentryConfig {
	return &SentryConfig{
		DSN:              os.Getenv("SENTRY_DSN"),
		Environment:      sentryEnvironment(),
		Release:          os.Getenv("SENTRY_RELEASE"),
		SampleRate:       envSampleRate("SENTRY_SAMPLE_RATE", 1.0),
		TracesSampleRate: envSampleRate("SENTRY_TRACES_SAMPLE_RATE", defaultTracesRate()),
		Debug:            os.Getenv("SENTRY_DEBUG") == "true",
		EnableTracing:    os.Getenv("SENTRY_ENABLE_TRACING") != "false",
		ServerName:       os.Getenv("SERVICE_NAME"),
		AttachStacktrace: true,
	}
}

// InitSentry initializes the global Sentry client. Returns an error when the
// DSN is missing so callers can decide to run without error tracking.
func InitSentry(config *SentryConfig) error {
	if config.DSN == "" {
		return fmt.Errorf("sentry DSN is not configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		SampleRate:       config.SampleRate,
		TracesSampleRate: config.TracesSampleRate,
		Debug:            config.Debug,
		EnableTracing:    config.EnableTracing,
		ServerName:       config.ServerName,
		AttachStacktrace: config.AttachStacktrace,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			return event
		},
		BeforeBreadcrumb: func(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			if breadcrumb.Category == "http" && breadcrumb.Data != nil {
				delete(breadcrumb.Data, "Authorization")
				delete(breadcrumb.Data, "Cookie")
			}
			return breadcrumb
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return nil
}

// Flush blocks until buffered events are delivered or the timeout elapses.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureError reports an error to Sentry. Nil errors are ignored.
func CaptureError(err error) *sentry.EventID {
	if err == nil {
		return nil
	}
	return sentry.CaptureException(err)
}

// AddBreadcrumbForRequest records a finished HTTP request as a breadcrumb so
// captured errors carry the recent request trail.
func AddBreadcrumbForRequest(method, url string, statusCode int, duration time.Duration) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "http",
		Category:  "http.request",
		Level:     sentry.LevelInfo,
		Message:   fmt.Sprintf("%s %s", method, url),
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"method":      method,
			"url":         url,
			"status_code": statusCode,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// expectedErrorFragments identify failures callers caused; reporting them
// would drown real defects in noise.
var expectedErrorFragments = []string{
	"validation failed",
	"invalid input",
	"not found",
	"conflict",
	"bad request",
}

// ShouldReportError decides whether an error belongs in Sentry. Client
// mistakes (4xx except rate limiting) and expected business failures do not.
func ShouldReportError(err error, statusCode int) bool {
	if err == nil {
		return false
	}

	if statusCode >= 400 && statusCode < 500 && statusCode != http.StatusTooManyRequests {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range expectedErrorFragments {
		if strings.Contains(msg, fragment) {
			return false
		}
	}
	return true
}

func sentryEnvironment() string {
	for _, key := range []string{"ENVIRONMENT", "SENTRY_ENVIRONMENT"} {
		if env := os.Getenv(key); env != "" {
			return env
		}
	}
	return "development"
}

func defaultTracesRate() float64 {
	if sentryEnvironment() == "production" {
		return 0.1
	}
	return 1.0
}

func envSampleRate(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var rate float64
	if _, err := fmt.Sscanf(raw, "%f", &rate); err != nil {
		return fallback
	}
	return rate
}
