package observability

import "sync"

// Metrics provides counters, gauges, and histogram recording primitives.
type Metrics interface {
	IncCounter(name string, value float64, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
}

var defaultMetrics Metrics = noopMetrics{}

// SetMetrics overrides the global metrics implementation used by the client.
func SetMetrics(metrics Metrics) {
	if metrics == nil {
		defaultMetrics = noopMetrics{}
		return
	}
	defaultMetrics = metrics
}

// Telemetry returns the current global metrics collector.
func Telemetry() Metrics {
	return defaultMetrics
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, float64, map[string]string)       {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}
func (noopMetrics) SetGauge(string, float64, map[string]string)         {}

// FetchMetricsSnapshot captures per-endpoint fetch counters.
type FetchMetricsSnapshot struct {
	Requests     map[string]int `json:"requests"`
	Failures     map[string]int `json:"failures"`
	FlushChanges map[string]int `json:"flush_changes"`
}

// RuntimeMetrics accumulates fetch metrics in-memory for periodic export.
type RuntimeMetrics struct {
	mu    sync.Mutex
	fetch FetchMetricsSnapshot
}

// NewRuntimeMetrics constructs a metrics accumulator with empty maps.
func NewRuntimeMetrics() *RuntimeMetrics {
	metrics := new(RuntimeMetrics)
	metrics.fetch = FetchMetricsSnapshot{
		Requests:     make(map[string]int),
		Failures:     make(map[string]int),
		FlushChanges: make(map[string]int),
	}
	return metrics
}

// RecordRequest increments the request counter for an endpoint.
func (m *RuntimeMetrics) RecordRequest(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetch.Requests[endpoint]++
}

// RecordFailure increments the failure counter for an error code.
func (m *RuntimeMetrics) RecordFailure(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetch.Failures[code]++
}

// RecordFlushChange increments the cache flush counter for a family.
func (m *RuntimeMetrics) RecordFlushChange(family string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetch.FlushChanges[family]++
}

// Snapshot copies the current fetch metrics state for reporting.
func (m *RuntimeMetrics) Snapshot() FetchMetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := FetchMetricsSnapshot{
		Requests:     make(map[string]int, len(m.fetch.Requests)),
		Failures:     make(map[string]int, len(m.fetch.Failures)),
		FlushChanges: make(map[string]int, len(m.fetch.FlushChanges)),
	}
	for k, v := range m.fetch.Requests {
		snapshot.Requests[k] = v
	}
	for k, v := range m.fetch.Failures {
		snapshot.Failures[k] = v
	}
	for k, v := range m.fetch.FlushChanges {
		snapshot.FlushChanges[k] = v
	}
	return snapshot
}
