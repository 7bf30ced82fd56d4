package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/api/middleware"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/config"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/metrics"
)

// HealthCheck 探测一个外部依赖，返回 nil 表示可用。
type HealthCheck func(ctx context.Context) error

// NewRouter 构建 Gin 路由引擎，挂载通用中间件、健康检查与指标端点。
func NewRouter(cfg config.APIConfig, logger *slog.Logger, checks map[string]HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger, "/health", "/metrics"),
		metrics.GinMiddleware("/ws", "/metrics"),
		cors.New(corsConfig(cfg.AllowedOrigins)),
	)

	router.GET("/health", healthHandler(checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// healthHandler 逐个执行依赖探测，任一失败返回 503。
func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				healthy = false
				results[name] = "unavailable"
				middleware.LoggerFromContext(c).Warn("health check failed",
					slog.String("dependency", name),
					slog.Any("error", err),
				)
				continue
			}
			results[name] = "ok"
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": results})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": results})
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Correlation-ID"},
		ExposeHeaders: []string{"X-Correlation-ID", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}
