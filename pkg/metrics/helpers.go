package metrics

import "time"

func RecordCacheHit(keyPrefix string) {
	CacheHits.WithLabelValues(keyPrefix).Inc()
}

func RecordCacheMiss(keyPrefix string) {
	CacheMisses.WithLabelValues(keyPrefix).Inc()
}

func RecordCacheError(operation string) {
	CacheErrors.WithLabelValues(operation).Inc()
}

func RecordKafkaMessageProduced(topic string) {
	KafkaMessagesProduced.WithLabelValues(topic).Inc()
}

func RecordKafkaError(topic string) {
	KafkaErrors.WithLabelValues(topic).Inc()
}

func RecordClickTracked() {
	ClicksTracked.Inc()
}

func RecordSyncRun(status string) {
	SyncRuns.WithLabelValues(status).Inc()
}

func RecordSyncProduct(action string) {
	SyncProducts.WithLabelValues(action).Inc()
}

func RecordUpstreamRetry() {
	UpstreamRetries.Inc()
}

// Timer - простой таймер для измерения длительности операций
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

func (t *Timer) Seconds() float64 {
	return time.Since(t.start).Seconds()
}
