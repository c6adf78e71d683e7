package tracing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/workhub/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware opens one server span per request, continuing the upstream
// trace when the auth proxy forwards one. The span is renamed to the matched
// route once handlers ran and carries the resolved tenant scope.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("workhub/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		span.SetName("HTTP " + c.Request.Method + " " + route)

		status := c.Writer.Status()
		reqCtx := c.Request.Context()
		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		}
		for key, value := range map[string]string{
			"request_id":             obscontext.RequestIDFromContext(reqCtx),
			"workhub.principal_id":   obscontext.PrincipalFromContext(reqCtx),
			"workhub.workspace_id":   obscontext.WorkspaceFromContext(reqCtx),
			"workhub.payment_method": c.Param("method"),
		} {
			if value != "" {
				attrs = append(attrs, attribute.String(key, value))
			}
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				if err := SafeError(last.Err); err != nil {
					span.RecordError(err)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
