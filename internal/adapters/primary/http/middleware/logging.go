package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := log.WithFields(log.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       redactPath(c.FullPath(), c.Request.URL.Path),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(ContextRequestID),
		})
		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics" {
			entry.Debug("request completed")
			return
		}
		entry.Info("request completed")
	}
}

// redactPath keeps artifact ids out of access logs; holding an id is enough
// to read the page.
func redactPath(route, path string) string {
	if strings.HasPrefix(route, "/view/") {
		return route
	}
	return path
}
