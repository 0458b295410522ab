package goAuthClient

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricAttemptStarted)

	if got := m.Value(MetricAttemptStarted); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricAttemptStarted)
	m.Inc(MetricAttemptStarted)
	m.Add(MetricRolesDropped, 3)

	if got := m.Value(MetricAttemptStarted); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricRolesDropped); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricAttemptStarted)
	m.Observe(MetricExchangeLatency, time.Second)
	if m.Value(MetricAttemptStarted) != 0 || m.Enabled() {
		t.Fatal("nil metrics must be inert")
	}
	if len(m.Snapshot().Counters) != 0 {
		t.Fatal("nil metrics must snapshot empty")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricTransportFailure)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricTransportFailure); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		time.Second,
		2500 * time.Millisecond,
		5 * time.Second,
		30 * time.Second,
	}

	for _, d := range observations {
		m.Observe(MetricExchangeLatency, d)
	}
	m.Observe(MetricAttemptStarted, time.Second)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricExchangeLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if _, ok := snap.Histograms[MetricAttemptStarted]; ok {
		t.Fatal("counter must not carry a histogram")
	}
}

func TestMetricsHistogramDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricExchangeLatency, time.Millisecond)
	if _, ok := m.Snapshot().Histograms[MetricExchangeLatency]; ok {
		t.Fatal("expected no histogram when latency histograms are disabled")
	}
}
