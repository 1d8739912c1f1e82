package common

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of the health and probe endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus reports the outcome of one dependency check.
type CheckStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Timestamp string `json:"timestamp"`
}

var startTime = time.Now()

// HealthCheck answers a basic "is the process up" probe.
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return staticProbe(serviceName, version, "healthy")
}

// LivenessProbe always reports alive; orchestrators restart the pod when it
// stops answering, not when it answers unhappily.
func LivenessProbe(serviceName, version string) gin.HandlerFunc {
	return staticProbe(serviceName, version, "alive")
}

func staticProbe(serviceName, version, status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
		})
	}
}

// ReadinessProbe runs the given dependency checks concurrently and reports
// 503 when any of them fails, so load balancers stop routing traffic here.
func ReadinessProbe(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()
		results := runChecks(checks, now)

		status := "ready"
		code := http.StatusOK
		for _, r := range results {
			if r.Status != "healthy" {
				status = "not ready"
				code = http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: now.Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Checks:    results,
		})
	}
}

func runChecks(checks map[string]func() error, now time.Time) map[string]CheckStatus {
	results := make(map[string]CheckStatus, len(checks))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check func() error) {
			defer wg.Done()
			start := time.Now()
			err := check()

			status := CheckStatus{
				Status:    "healthy",
				Duration:  time.Since(start).String(),
				Timestamp: now.Format(time.RFC3339),
			}
			if err != nil {
				status.Status = "unhealthy"
				status.Message = err.Error()
			}

			mu.Lock()
			results[name] = status
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	return results
}
