// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型速查：
// - Counter（计数器）：只增不减，如借阅总数、归还总数
// - Gauge（仪表盘）：可增可减的瞬时值，如处理中的借阅请求数
// - Histogram（直方图）：观测值分布，如借阅事务耗时（自动计算P50/P90/P99）
//
// 使用方式：
//
//	metrics.InitMetrics()                                  // 启动时注册一次
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))       // 暴露抓取端点
//	metrics.BorrowsTotal.Inc()                             // 业务代码打点
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// Gauge使用现在时态；标签只用低基数维度（result、method），
// 不要把member_id这类高基数值当标签。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册panic）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method（GET/POST）、path（路由模板）、status（业务码分类）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// BorrowsTotal 借出成功总数
	BorrowsTotal prometheus.Counter

	// BorrowFailuresTotal 借出失败总数
	// 标签：reason（no_copy/limit_exceeded/not_found/other）
	BorrowFailuresTotal *prometheus.CounterVec

	// ReturnsTotal 归还成功总数
	ReturnsTotal prometheus.Counter

	// BorrowDuration 借出事务耗时（含行锁等待）
	BorrowDuration prometheus.Histogram

	// LoansInProgress 正在处理中的借还请求数
	LoansInProgress prometheus.Gauge

	// 缓存指标

	// CacheRequestsTotal 可用性缓存请求总数
	// 标签：result（hit/miss/error/rejected）
	CacheRequestsTotal *prometheus.CounterVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// 消息队列指标

	// EventsPublishedTotal 借阅事件发布总数
	// 标签：routing_key（loan.created/loan.returned）、result（success/failure）
	EventsPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次，使用promauto注册到默认Registry
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 借阅业务指标
	BorrowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_borrowed_total",
			Help: "借出成功总数",
		},
	)

	BorrowFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loans_borrow_failures_total",
			Help: "借出失败总数",
		},
		[]string{"reason"},
	)

	ReturnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_returned_total",
			Help: "归还成功总数",
		},
	)

	BorrowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "loan_borrow_duration_seconds",
			Help: "借出事务耗时（秒）",
			// 借出走行锁+事务，通常在几十毫秒内；长尾来自锁等待
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	LoansInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loans_in_progress",
			Help: "正在处理中的借还请求数",
		},
	)

	// 缓存指标
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_cache_requests_total",
			Help: "可用性缓存请求总数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// 消息队列指标
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_events_published_total",
			Help: "借阅事件发布总数",
		},
		[]string{"routing_key", "result"},
	)
}
