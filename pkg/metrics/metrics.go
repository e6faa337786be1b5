package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример запроса PromQL: rate(http_requests_total{path="/api/trending"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
)

// =============================================================================
// Redis метрики
// =============================================================================

// CacheHits - попадания в кеш
var CacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"key_prefix"},
)

// CacheMisses - промахи кеша
var CacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"key_prefix"},
)

// CacheErrors - ошибки Redis
var CacheErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"operation"},
)

// =============================================================================
// Kafka метрики
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"topic"},
)

// KafkaErrors - ошибки отправки в Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka produce errors",
	},
	[]string{"topic"},
)

// =============================================================================
// Доменные метрики каталога
// =============================================================================

// ClicksTracked - количество затреканных кликов по товарам
var ClicksTracked = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "product_clicks_tracked_total",
		Help: "Total number of tracked product clicks",
	},
)

// SyncRuns - запуски синхронизации каталога по статусу
var SyncRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_sync_runs_total",
		Help: "Total number of catalog sync runs",
	},
	[]string{"status"}, // success, failed
)

// SyncProducts - обработанные синхронизацией товары по действию
var SyncProducts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_sync_products_total",
		Help: "Total number of products processed by catalog sync",
	},
	[]string{"action"}, // created, updated, skipped
)

// UpstreamRetries - повторные попытки запросов к внешнему API каталога
var UpstreamRetries = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "catalog_upstream_retries_total",
		Help: "Total number of retried requests to the upstream catalog API",
	},
)
