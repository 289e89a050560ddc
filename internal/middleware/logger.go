package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDKey = "request_id"

// RequestLogger tags each request with an id (X-Request-Id or a fresh uuid) and
// logs one line when it finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Header("X-Request-Id", reqID)

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"ip":         c.ClientIP(),
		})
		switch {
		case status >= 500:
			entry.Error("[http] request failed")
		case status >= 400:
			entry.Warn("[http] request rejected")
		default:
			entry.Info("[http] request")
		}
	}
}

// RequestID returns the id RequestLogger assigned.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
