package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/codec"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/transport"
)

type fakeSource struct {
	snapshot goAuthClient.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goAuthClient.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                          { return f.dropped }

func TestCollectNothingWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters:   map[goAuthClient.MetricID]uint64{},
			Histograms: map[goAuthClient.MetricID][]uint64{},
		},
	})

	if n := testutil.CollectAndCount(exp); n != 0 {
		t.Fatalf("expected no metrics for disabled source, got %d", n)
	}
}

func TestCollectCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters: map[goAuthClient.MetricID]uint64{
				goAuthClient.MetricAttemptSucceeded: 7,
			},
			Histograms: map[goAuthClient.MetricID][]uint64{
				goAuthClient.MetricExchangeLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	expected := `
# HELP goauth_client_attempt_succeeded_total Exchanges answered with an issued token.
# TYPE goauth_client_attempt_succeeded_total counter
goauth_client_attempt_succeeded_total 7
# HELP goauth_client_audit_dropped_total Audit events that never reached the sink.
# TYPE goauth_client_audit_dropped_total counter
goauth_client_audit_dropped_total 2
# HELP goauth_client_exchange_latency_seconds Network exchange latency.
# TYPE goauth_client_exchange_latency_seconds histogram
goauth_client_exchange_latency_seconds_bucket{le="0.05"} 1
goauth_client_exchange_latency_seconds_bucket{le="0.1"} 3
goauth_client_exchange_latency_seconds_bucket{le="0.25"} 6
goauth_client_exchange_latency_seconds_bucket{le="0.5"} 10
goauth_client_exchange_latency_seconds_bucket{le="1"} 15
goauth_client_exchange_latency_seconds_bucket{le="2.5"} 21
goauth_client_exchange_latency_seconds_bucket{le="5"} 28
goauth_client_exchange_latency_seconds_bucket{le="+Inf"} 36
goauth_client_exchange_latency_seconds_sum 0
goauth_client_exchange_latency_seconds_count 36
`
	err := testutil.CollectAndCompare(exp, strings.NewReader(expected),
		"goauth_client_attempt_succeeded_total",
		"goauth_client_audit_dropped_total",
		"goauth_client_exchange_latency_seconds",
	)
	if err != nil {
		t.Fatalf("unexpected collection: %v", err)
	}
}

func TestHandlerServesClientCounters(t *testing.T) {
	ex := transport.ExchangerFunc(func(context.Context, transport.Request) (transport.Response, error) {
		return transport.Response{Status: http.StatusCreated, Body: codec.EncodeSuccess("abc", []string{"USER"})}, nil
	})
	client, err := goAuthClient.New().
		WithExchanger(ex).
		WithSessionStore(session.NewMemoryStore()).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer client.Close()

	if err := client.Logout(context.Background(), "bob"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	rec := httptest.NewRecorder()
	NewPrometheusExporter(client).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "goauth_client_session_removed_total 1") {
		t.Fatalf("expected removal counter, got:\n%s", body)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}
