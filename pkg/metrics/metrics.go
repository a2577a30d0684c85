package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Completion 调用延迟（毫秒）
	CompletionCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_call_latency_ms",
			Help:    "Remote completion service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"instruction", "status"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 邮件处理计数
	MessageProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_processed_count",
			Help: "Total number of inbox messages processed",
		},
		[]string{"status"}, // status: success, completion_failed
	)

	// 检测到截止日期的邮件计数
	DeadlineDetectedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_detected_count",
			Help: "Total number of messages with a detected deadline",
		},
		[]string{"urgency"},
	)
)

// RecordCompletionCallLatency 记录 completion 调用延迟
func RecordCompletionCallLatency(instruction, status string, duration time.Duration) {
	CompletionCallLatency.WithLabelValues(instruction, status).Observe(float64(duration.Milliseconds()))
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementMessageProcessed 增加邮件处理计数
func IncrementMessageProcessed(status string) {
	MessageProcessedCount.WithLabelValues(status).Inc()
}

// IncrementDeadlineDetected 增加截止日期检测计数
func IncrementDeadlineDetected(urgency string) {
	DeadlineDetectedCount.WithLabelValues(urgency).Inc()
}
