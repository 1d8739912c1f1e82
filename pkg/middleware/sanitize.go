package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ridealong/event-carpool/pkg/security"
)

// Bodies beyond this size are passed through untouched rather than buffered.
const maxSanitizedBodySize = 2 << 20

// SanitizeRequest scrubs query parameters and JSON string values before
// handlers bind them. Non-JSON and malformed bodies are left as-is so the
// binder can produce its own error.
func SanitizeRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		scrubQuery(c)
		scrubJSONBody(c)
		c.Next()
	}
}

func scrubQuery(c *gin.Context) {
	query := c.Request.URL.Query()

	dirty := false
	for key, values := range query {
		for i, value := range values {
			if cleaned := security.SanitizeInput(value, 0); cleaned != value {
				query[key][i] = cleaned
				dirty = true
			}
		}
	}
	if dirty {
		c.Request.URL.RawQuery = query.Encode()
	}
}

func scrubJSONBody(c *gin.Context) {
	if c.Request.Body == nil {
		return
	}
	if !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSanitizedBodySize))
	if err != nil {
		c.Request.Body = http.NoBody
		return
	}
	if len(raw) == 0 {
		restoreBody(c, raw)
		return
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		restoreBody(c, raw)
		return
	}

	scrubValue(&payload)

	cleaned, err := json.Marshal(payload)
	if err != nil {
		restoreBody(c, raw)
		return
	}
	restoreBody(c, cleaned)
}

func restoreBody(c *gin.Context, body []byte) {
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
}

func scrubValue(value *interface{}) {
	switch v := (*value).(type) {
	case string:
		*value = security.SanitizeInput(v, 0)
	case []interface{}:
		for i := range v {
			item := v[i]
			scrubValue(&item)
			v[i] = item
		}
	case map[string]interface{}:
		for key, item := range v {
			scrubValue(&item)
			v[key] = item
		}
	}
}
