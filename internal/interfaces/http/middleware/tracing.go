package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "inventory-mockapi",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware.
// It wraps otelgin, so the span is named after the matched route
// (e.g. "GET /api/products"). otelgin ends the span when the chain returns,
// so request attributes are added by SpanErrorMarker, which runs inside it.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// enrichSpanWithAttributes adds custom attributes to the span from the request context.
func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if username := GetJWTUsername(c); username != "" {
		span.SetAttributes(attribute.String("username", username))
	}
}

// SpanErrorMarker tags the request span with request_id and username and
// marks it as failed for 4xx/5xx responses. Place it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpanWithAttributes(c, span)

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		message := "Client Error"
		switch {
		case status >= http.StatusInternalServerError:
			message = "Internal Server Error"
		case status == http.StatusUnauthorized:
			message = "Unauthorized"
		case status == http.StatusNotFound:
			message = "Not Found"
		}
		// otelgin resets the description of 5xx spans once the chain returns,
		// so the reason is kept as an attribute as well
		span.SetStatus(codes.Error, message)
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("error.reason", message),
		)
	}
}
