package middleware

import (
	"net/http"

	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns otelgin followed by a handler that tags the request span
// with the request ID and the order kind and ID from the route. Responses of
// 400 and above mark the span as failed.
// Install after logger.GinMiddleware so the request ID is in the context.
func Tracing(serviceName string, enabled bool) gin.HandlersChain {
	if !enabled {
		return gin.HandlersChain{func(c *gin.Context) { c.Next() }}
	}
	return gin.HandlersChain{otelgin.Middleware(serviceName), annotateSpan}
}

// annotateSpan runs inside the otelgin span, which is still open after c.Next returns
func annotateSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if id := logger.GetRequestID(c.Request.Context()); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if kind := c.Param("kind"); kind != "" {
		span.SetAttributes(attribute.String("order.kind", kind))
	}
	if id := c.Param("id"); id != "" {
		span.SetAttributes(attribute.String("order.id", id))
	}

	status := c.Writer.Status()
	if status >= http.StatusBadRequest {
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
