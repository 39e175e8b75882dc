package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request, including any
// errors handlers attached with c.Error.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if userID, ok := CurrentUserID(c); ok {
			entry = entry.WithField("user_id", userID)
		}

		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("request failed")
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		default:
			entry.Info("request")
		}
	}
}
