// Package metrics 汇总服务暴露给 Prometheus 的指标。
package metrics

const namespace = "smartresume"
