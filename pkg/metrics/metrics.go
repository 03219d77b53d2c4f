// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP 请求与表格导入流水线的指标.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.IngestTotal.WithLabelValues(metrics.IngestSuccess).Inc()
package metrics

import (
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/exceleasy/pkg/configs"
)

// 导入结果标签.
const (
	IngestSuccess     = "success"
	IngestRejected    = "rejected"
	IngestDecodeError = "decode_error"
	IngestStoreError  = "store_error"
	IngestReplayed    = "replayed"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ActiveConnections 活跃请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// IngestTotal 上传导入结果计数.
	IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exceleasy_ingest_total",
			Help: "Spreadsheet uploads by outcome",
		},
		[]string{"status"},
	)

	// UploadBytes 被接受的上传大小分布.
	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exceleasy_upload_bytes",
			Help:    "Size of accepted spreadsheet uploads",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
		},
	)

	// DecodeDuration 解析耗时，按格式区分.
	DecodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exceleasy_decode_duration_seconds",
			Help:    "Time spent decoding a worksheet",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	// DecodeInFlight 正在进行的解析任务数.
	DecodeInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "exceleasy_decode_in_flight",
			Help: "Number of decodes currently holding a pool slot",
		},
	)

	// RowsDecoded 解析出的数据行总数.
	RowsDecoded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exceleasy_rows_decoded_total",
			Help: "Data rows produced by the decoder",
		},
	)

	// StoreRetries 存储层重试次数.
	StoreRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exceleasy_store_retries_total",
			Help: "Store operations retried after a transient failure",
		},
		[]string{"op"},
	)

	// ActivityAppendFailures 活动日志写入失败次数（失败不会传播给调用方）.
	ActivityAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exceleasy_activity_append_failures_total",
			Help: "Activity log entries that could not be persisted",
		},
	)

	// BreakerState HTTP 熔断器状态：0 关闭，1 半开，2 打开.
	BreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "exceleasy_http_breaker_state",
			Help: "HTTP circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		// 注册标准收集器
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections,
			IngestTotal, UploadBytes, DecodeDuration, DecodeInFlight, RowsDecoded,
			StoreRetries, ActivityAppendFailures, BreakerState,
		)
	})

	return nil
}

// RegisterRoutes 在引擎上挂载 /metrics，调试模式下同时挂载 pprof.
func RegisterRoutes(config configs.MetricsConfig, engine *gin.Engine, debug bool) {
	if !config.Enabled {
		return
	}

	engine.GET("/metrics", gin.WrapH(Handler()))

	if debug {
		pp := engine.Group("/debug/pprof")
		pp.GET("/", gin.WrapF(pprof.Index))
		pp.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/symbol", gin.WrapF(pprof.Symbol))
		pp.GET("/trace", gin.WrapF(pprof.Trace))
		pp.GET("/:name", func(c *gin.Context) {
			pprof.Handler(c.Param("name")).ServeHTTP(c.Writer, c.Request)
		})
	}
}

// StartMetricsServer 在独立端口提供 /metrics，endpoint 为空时不启动.
func StartMetricsServer(config configs.MetricsConfig) *http.Server {
	if !config.Enabled || config.Endpoint == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{Addr: config.Endpoint, Handler: mux} //nolint:gosec // 内部指标端口

	go func() { _ = srv.ListenAndServe() }()

	return srv
}

// Handler 返回基于自有注册表的 promhttp 处理器.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
