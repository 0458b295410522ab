// Package prometheus exposes goAuthClient counters through client_golang.
//
// [PrometheusExporter] is a prometheus.Collector: register it with any registry, or
// mount [PrometheusExporter.Handler] which uses a private one. Counter names are
// prefixed goauth_client_ and end in _total; exchange latency is the histogram
// goauth_client_exchange_latency_seconds.
package prometheus
