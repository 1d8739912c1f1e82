package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridealong/event-carpool/pkg/logger"
	"github.com/ridealong/event-carpool/pkg/security"
)

// loggedPayloadLimit caps how much of a request or response body lands in a
// log line. Match payloads carry full participant rosters, which can be large.
const loggedPayloadLimit = 512

type bodyMirror struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (m *bodyMirror) Write(data []byte) (int, error) {
	m.buf.Write(data)
	return m.ResponseWriter.Write(data)
}

func (m *bodyMirror) WriteString(data string) (int, error) {
	m.buf.WriteString(data)
	return m.ResponseWriter.WriteString(data)
}

// RequestLogger emits one structured log line per request, including
// sanitized and truncated request/response bodies.
func RequestLogger(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestBody := snapshotRequestBody(c)

		mirror := &bodyMirror{ResponseWriter: c.Writer}
		c.Writer = mirror

		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("response_size", mirror.buf.Len()),
		}
		if requestBody != "" {
			fields = append(fields, zap.String("request_body", requestBody))
		}
		if responseBody := loggablePayload(mirror.buf.Bytes()); responseBody != "" {
			fields = append(fields, zap.String("response_body", responseBody))
		}

		reqLogger := logger.WithContext(c.Request.Context())
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			reqLogger.Error("Request completed with errors", fields...)
		} else {
			reqLogger.Info("Request completed", fields...)
		}
	}
}

// snapshotRequestBody reads the body for logging and puts an equivalent
// reader back so binding still works downstream.
func snapshotRequestBody(c *gin.Context) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	return loggablePayload(raw)
}

func loggablePayload(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	cleaned := security.SanitizeString(security.StripHTMLTags(string(payload)))
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if len(cleaned) > loggedPayloadLimit {
		cleaned = cleaned[:loggedPayloadLimit] + "...(truncated)"
	}
	return cleaned
}
