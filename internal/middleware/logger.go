package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger returns a middleware that logs failed requests using logrus.
// Successful traffic stays quiet; the proxied path is high volume.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		statusCode := c.Writer.Status()
		if statusCode < 400 || strings.Contains(path, "/health") {
			return
		}

		if raw != "" {
			path = path + "?" + raw
		}

		fields := logrus.Fields{
			"status":    statusCode,
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"path":      path,
			"bytes_out": c.Writer.Size(),
		}

		// Auth middleware ran before the handler, so failures past
		// authentication carry the caller's identity
		if accountID, ok := c.Get("account_id"); ok {
			fields["account_id"] = accountID
		}
		if keyID, ok := c.Get("key_id"); ok {
			fields["key_id"] = keyID
		}

		entry := logrus.WithFields(fields)
		if statusCode >= 500 {
			entry.Error("Request failed")
		} else {
			entry.Warn("Request rejected")
		}
	}
}
