// Package otel exports goAuthClient counters through an OpenTelemetry meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per counter family (attempts by
// stage, outcomes by kind, session store events, dropped roles) and audit drops by
// operation. Latency buckets are cumulative gauges with an "le" attribute. A single
// callback reads [goAuthClient.Client.MetricsSnapshot] on each collection. The caller
// owns the MeterProvider.
package otel
