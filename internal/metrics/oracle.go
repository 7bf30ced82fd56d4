package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	oracleCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "LLM 调用耗时分布（秒）。",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		},
		[]string{"provider", "operation", "status"},
	)

	oracleFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "fallback_total",
			Help:      "主模型失败后切换到备用模型的次数。",
		},
		[]string{"operation"},
	)

	stagedPDFsPurged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staging",
			Name:      "purged_total",
			Help:      "已清理的暂存 PDF 数量。",
		},
		[]string{"trigger"},
	)
)

// ObserveOracleCall 记录一次 LLM 调用。
func ObserveOracleCall(provider, operation string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	oracleCallDuration.WithLabelValues(provider, operation, status).Observe(elapsed.Seconds())
}

// IncOracleFallback 记录一次降级。
func IncOracleFallback(operation string) {
	oracleFallbackTotal.WithLabelValues(operation).Inc()
}

// AddStagedPurged 记录清理掉的暂存文件，trigger 为 task 或 sweep。
func AddStagedPurged(trigger string, n int) {
	stagedPDFsPurged.WithLabelValues(trigger).Add(float64(n))
}
