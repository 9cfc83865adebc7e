package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Logging emits one structured line per request. It reads the request id
// placed in the context by RequestID, so it must run after that middleware.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := log.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(ContextRequestID),
		}

		if len(c.Errors) > 0 {
			log.WithFields(fields).Error(c.Errors.String())
			return
		}
		log.WithFields(fields).Info("request completed")
	}
}
