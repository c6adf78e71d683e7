package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/workhub/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/api/settings", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/settings", fields["route"])
	assert.Equal(t, "req-123", fields["request_id"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "INSERT", operationFromSQL(" insert into settings values (1)"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/health", http.StatusOK, ""))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/invoices", http.StatusInternalServerError, "internal_error"))
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/api/payment-methods/:method/validate", http.StatusBadRequest, "validation_error"))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/settings", http.StatusBadRequest, "validation_error"))
}

func TestWithContextSkipsEmptyFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := obscontext.WithPrincipal(context.Background(), "42")

	WithContext(ctx, zap.New(core)).Info("x")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "42", fields["principal_id"])
	assert.NotContains(t, fields, "request_id")
	assert.NotContains(t, fields, "trace_id")
}
