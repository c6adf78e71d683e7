package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/workhub/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const headerRequestID = "X-Request-Id"

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps the last handler error to (type, code).
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware assigns a request id and writes one http_request entry per
// request after the handlers ran.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := requestIDFor(c)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := strings.TrimSpace(c.FullPath())
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		if method := strings.TrimSpace(c.Param("method")); method != "" {
			fields = append(fields, zap.String("payment_method", method))
		}

		var errType string
		if last := c.Errors.Last(); last != nil {
			var errCode string
			if cfg.ErrorClassifier != nil {
				errType, errCode = cfg.ErrorClassifier(last.Err)
			}
			fields = append(fields, zap.String("error_type", errType), zap.String("error_code", errCode))
			if cfg.Debug {
				fields = append(fields, zap.Stack("stack"))
			}
		}

		if ce := FromContext(c.Request.Context()).Check(requestLevel(route, status, errType), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// requestIDFor reuses the caller's id so proxies and workhub log the same one.
func requestIDFor(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(headerRequestID))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(headerRequestID, id)
	return id
}

// requestLevel demotes probes and payment config validation failures, which
// the settings form triggers while the user is still typing.
func requestLevel(route string, status int, errType string) zapcore.Level {
	switch {
	case route == "/health" || route == "/metrics":
		return zapcore.DebugLevel
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case strings.HasSuffix(route, "/validate") && errType == "validation_error":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
