package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ridealong/event-carpool/pkg/logger"
)

const (
	// CorrelationIDHeader carries the request's correlation ID in and out.
	CorrelationIDHeader = "X-Request-ID"
	// CorrelationIDKey is the gin context key holding the correlation ID.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID accepts a caller-supplied X-Request-ID when it is a valid
// UUID, otherwise mints one. The ID is placed on the gin context, the request
// context (for log enrichment) and the response header.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(CorrelationIDKey, id)
		c.Request = c.Request.WithContext(logger.ContextWithCorrelationID(c.Request.Context(), id))
		c.Writer.Header().Set(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the correlation ID assigned to this request.
func GetCorrelationID(c *gin.Context) string {
	if id, ok := c.Get(CorrelationIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return logger.CorrelationIDFromContext(c.Request.Context())
}
