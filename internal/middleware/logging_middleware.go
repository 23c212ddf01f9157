package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextRequestID is the gin context key of the request ID.
const ContextRequestID = "requestID"

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

var quietRoutes = map[string]bool{
	"/health":  true,
	"/ping":    true,
	"/metrics": true,
}

// RequestLogger tags each request with an ID and logs one line per request.
// Routes are logged by their template so listing IDs do not fan out into
// separate log keys; health and metrics scrapes are logged at debug level.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RequestLogger requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status_code", status),
			zap.Duration("latency", time.Since(start)),
		}
		if userID := c.GetString(ContextUserID); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("gin_errors", c.Errors.String()))
		}

		level := zapcore.InfoLevel
		msg := "Request handled"
		switch {
		case errors.Is(c.Request.Context().Err(), context.Canceled):
			msg = "Client went away"
		case quietRoutes[route]:
			level = zapcore.DebugLevel
		case status >= http.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zapcore.WarnLevel
		}
		if ce := logger.Check(level, msg); ce != nil {
			ce.Write(fields...)
		}
	}
}
