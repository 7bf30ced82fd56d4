package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时分布（秒）。",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数。",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "正在处理中的 HTTP 请求数。",
		},
	)

	wsSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "open_sessions",
			Help:      "当前打开的 websocket 聊天连接数。",
		},
	)
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, requestsInFlight, wsSessions)
	})
}

// GinMiddleware 为 Gin 路由注册 Prometheus 指标采集逻辑。
// skipPaths 中的路由（如 websocket 长连接）不计入耗时直方图与在途请求数。
func GinMiddleware(skipPaths ...string) gin.HandlerFunc {
	register()
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		_, skipped := skip[path]
		if !skipped {
			requestsInFlight.Inc()
			defer requestsInFlight.Dec()
		}

		c.Next()

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		requestTotal.With(labels).Inc()
		if !skipped {
			requestDuration.With(labels).Observe(time.Since(start).Seconds())
		}
	}
}

// ChatSessionOpened 在 websocket 连接建立时调用，返回的函数在关闭时调用。
func ChatSessionOpened() func() {
	register()
	wsSessions.Inc()
	return wsSessions.Dec
}
