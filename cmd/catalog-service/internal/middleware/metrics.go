package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求计数
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP 请求延迟
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)

	// 共享操作计数
	shareOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_share_operations_total",
			Help: "Total number of share operations",
		},
		[]string{"operation", "status"},
	)

	// 房间广播计数
	broadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_broadcasts_total",
			Help: "Total number of room broadcasts",
		},
		[]string{"event"},
	)

	// WebSocket 连接数
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_websocket_connections",
			Help: "Current number of WebSocket connections",
		},
	)

	// 错误计数
	errorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

// MetricsMiddleware Prometheus 指标采集中间件
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 跳过 metrics 端点本身
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		// 处理请求
		c.Next()

		// 记录延迟
		duration := time.Since(start).Seconds()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		// 记录请求计数
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()

		// 记录错误
		if c.Writer.Status() >= 400 {
			errorType := "client_error"
			if c.Writer.Status() >= 500 {
				errorType = "server_error"
			}
			errorCount.WithLabelValues(errorType).Inc()
		}
	}
}

// RecordShareOperation 记录共享操作
func RecordShareOperation(operation, status string) {
	shareOperations.WithLabelValues(operation, status).Inc()
}

// RecordBroadcast 记录房间广播
func RecordBroadcast(event string) {
	broadcastsTotal.WithLabelValues(event).Inc()
}

// IncWebSocketConnections 增加 WebSocket 连接数
func IncWebSocketConnections() {
	websocketConnections.Inc()
}

// DecWebSocketConnections 减少 WebSocket 连接数
func DecWebSocketConnections() {
	websocketConnections.Dec()
}
