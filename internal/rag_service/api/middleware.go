package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationIDHeader carries the request correlation id, echoed back on the
// response and stamped onto audit entries.
const CorrelationIDHeader = "X-Correlation-ID"

const correlationIDKey = "correlationID"

// CorrelationID ensures every request has a correlation id: the caller's, or
// a generated one.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(correlationIDKey, id)
		c.Writer.Header().Set(CorrelationIDHeader, id)
		c.Next()
	}
}

func correlationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}
