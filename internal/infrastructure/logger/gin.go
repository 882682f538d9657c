package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietRoutes are polled by dashboards every few seconds; successful calls log at debug
var quietRoutes = []string{"/status", "/my-jobs", "/health", "/metrics"}

func isQuiet(route string) bool {
	for _, suffix := range quietRoutes {
		if strings.HasSuffix(route, suffix) {
			return true
		}
	}
	return false
}

// GinMiddleware logs every request served by the fake API. The request logger,
// tagged with the request id, is stored in the request context for handlers.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx, reqLogger := WithRequestID(c.Request.Context(), logger, c.GetString("request_id"))
		c.Request = c.Request.WithContext(WithContext(ctx, reqLogger))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if user := GetUsername(c.Request.Context()); user != "" {
			fields = append(fields, zap.String("username", user))
		}
		if c.Request.Method == http.MethodPost && c.Request.ContentLength > 0 {
			fields = append(fields, zap.Int64("upload_bytes", c.Request.ContentLength))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		case isQuiet(route):
			level = zapcore.DebugLevel
		}
		if ce := reqLogger.Check(level, "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 with the backend's error envelope
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", c.GetString("request_id")),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "INTERNAL_ERROR",
					"message": "The server could not complete the request",
				})
			}
		}()
		c.Next()
	}
}
