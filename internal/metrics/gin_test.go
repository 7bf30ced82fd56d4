package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestGinMiddlewareTracksInFlightRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware("/ws"))

	base := gaugeValue(t, requestsInFlight)
	var during, duringSkipped float64
	router.GET("/slow", func(c *gin.Context) {
		during = gaugeValue(t, requestsInFlight)
		c.Status(http.StatusOK)
	})
	router.GET("/ws", func(c *gin.Context) {
		duringSkipped = gaugeValue(t, requestsInFlight)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, base+1, during)
	assert.Equal(t, base, gaugeValue(t, requestsInFlight))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, base, duringSkipped)
}

func TestGinMiddlewareCountsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())

	counter := requestTotal.With(prometheus.Labels{"method": http.MethodGet, "path": "unmatched", "status": "404"})
	var before dto.Metric
	require.NoError(t, counter.Write(&before))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var after dto.Metric
	require.NoError(t, counter.Write(&after))
	assert.Equal(t, before.GetCounter().GetValue()+1, after.GetCounter().GetValue())
}
