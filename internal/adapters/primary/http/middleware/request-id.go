package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// ContextRequestID is the gin context key under which the request id is
// stored for downstream middleware and handlers.
const ContextRequestID = "request_id"

// RequestID propagates the caller's X-Request-ID, minting one when absent,
// and echoes it back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(ContextRequestID, id)
		c.Header(requestIDHeader, id)

		c.Next()
	}
}
