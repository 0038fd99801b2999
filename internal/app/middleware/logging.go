package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/app/diagnostics"
	"github.com/orthodoxrecords/site/internal/infrastructure/logging"
	"github.com/orthodoxrecords/site/internal/infrastructure/monitoring"
)

// RequestLogger logs request info and records metrics. Query strings are
// never logged since they may carry access tokens.
func RequestLogger(logger *zap.Logger, buffer *diagnostics.LogBuffer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		logging.WithRequestID(logger, c.GetString(RequestIDKey)).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.String("status", status),
			zap.Duration("latency", latency),
			zap.Strings("errors", c.Errors.Errors()),
		)
		if buffer != nil {
			buffer.Append(time.Now().UTC().Format(time.RFC3339) + " " + c.Request.Method + " " + c.Request.URL.Path + " -> " + status)
		}
		monitoring.ObserveRequest(route, c.Request.Method, status, latency.Seconds())
	}
}
