package goAuthClient

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one client counter or histogram.
type MetricID uint16

const (
	// MetricAttemptStarted counts attempts that reached the network.
	MetricAttemptStarted MetricID = iota
	// MetricAttemptIgnored counts attempts dropped because one was already in flight.
	MetricAttemptIgnored
	// MetricAttemptRejected counts attempts stopped by local validation.
	MetricAttemptRejected
	// MetricAttemptSucceeded counts 201 exchanges that decoded to a session.
	MetricAttemptSucceeded
	// MetricFieldError counts field-scoped rejections from the endpoint.
	MetricFieldError
	// MetricGenericError counts non-field rejections from the endpoint.
	MetricGenericError
	// MetricTransportFailure counts exchanges without a usable response.
	MetricTransportFailure
	// MetricAttemptTimeout counts transport failures caused by the exchange timeout.
	MetricAttemptTimeout
	// MetricAttemptCancelled counts attempts cancelled by the caller.
	MetricAttemptCancelled
	// MetricSessionPersisted counts sessions written to the store.
	MetricSessionPersisted
	// MetricSessionPersistFailed counts failed store writes.
	MetricSessionPersistFailed
	// MetricSessionRemoved counts explicit logouts.
	MetricSessionRemoved
	// MetricRolesDropped counts unrecognized role names discarded from successes.
	MetricRolesDropped
	// MetricExchangeLatency is the histogram of network exchange latency.
	MetricExchangeLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters for one Client. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters. Histogram buckets are
// non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add adds n to id.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount || n == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records d in the histogram of id. Only MetricExchangeLatency has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricExchangeLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. A disabled Metrics yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricExchangeLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricExchangeLatency].buckets[i])
		}
		s.Histograms[MetricExchangeLatency] = buckets
	}

	return s
}

// Bucket upper bounds: 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
