// Package metrics 提供 Prometheus 指标注册与暴露.
//
// 指标分两类：HTTP 层的请求计数/时延由中间件记录，
// 领域指标（流程状态分布、预签名链接签发量）由业务代码与定时任务记录.
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 注册 pprof 端点到 DefaultServeMux

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/ingestvault/pkg/configs"
)

var (
	// RequestCounter HTTP 请求计数.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP 请求时延分布.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// IngestProcessesByState 各状态下的摄取流程数量，由定时任务刷新.
	IngestProcessesByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingest_processes_by_state",
			Help: "Number of ingest processes per state",
		},
		[]string{"state"},
	)

	// PresignedURLsIssued 预签名下载链接签发计数.
	PresignedURLsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presigned_urls_issued_total",
			Help: "Total number of presigned download URLs issued",
		},
		[]string{"host"},
	)

	registry = prometheus.NewRegistry()
)

// InitMetrics 注册全部指标收集器，未启用时是空操作.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	registry.MustRegister(
		RequestCounter, RequestDuration,
		IngestProcessesByState, PresignedURLsIssued,
	)

	return nil
}

// StartMetricsServer 在主引擎上暴露 /metrics，按需挂载 pprof.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}
