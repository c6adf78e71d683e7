package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, Config{ServiceName: "workhub", Environment: "test"})

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/settings/:key", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/settings/dateFormat", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/settings/:key", "204"))
	assert.Equal(t, float64(2), got)

	families, err := reg.Gather()
	require.NoError(t, err)
	var histogram *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "workhub_http_request_duration_seconds" {
			histogram = mf
		}
	}
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(2), histogram.GetMetric()[0].GetHistogram().GetSampleCount())
}
