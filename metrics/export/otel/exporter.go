package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no snapshot source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goAuthClient.MetricsSnapshot
	AuditDroppedByOperation() map[string]uint64
}

// auditScopes are always observed so the dropped series exist before the first drop.
var auditScopes = []string{
	goAuthClient.OperationLogin.String(),
	goAuthClient.OperationSignup.String(),
	goAuthClient.AuditUnscoped,
}

type counterSeries struct {
	id   goAuthClient.MetricID
	attr metric.ObserveOption
}

type counterFamily struct {
	instrument metric.Int64ObservableCounter
	series     []counterSeries
}

type latencyHistogram struct {
	id      goAuthClient.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter observes a Client's counters on every collection of the meter's reader.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	families     []counterFamily
	histograms   []latencyHistogram
	le           []metric.ObserveOption
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers observable instruments on meter that read from client.
func NewOTelExporter(meter metric.Meter, client *goAuthClient.Client) (*OTelExporter, error) {
	if client == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, client)
}

// NewOTelExporterFromSource registers observable instruments reading from source.
//
// Counters are grouped into the families of internaldefs.CounterFamilies, one series per
// attribute value. Each histogram becomes a <name>_bucket gauge of cumulative counts with
// an "le" attribute and a <name>_count gauge. Audit drops carry an "operation" attribute.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var observables []metric.Observable

	index := make(map[string]int, len(internaldefs.CounterFamilies))
	keys := make([]string, 0, len(internaldefs.CounterFamilies))
	for _, f := range internaldefs.CounterFamilies {
		ins, err := meter.Int64ObservableCounter(f.Name, metric.WithDescription(f.Help))
		if err != nil {
			return nil, fmt.Errorf("create counter family %s: %w", f.Name, err)
		}
		index[f.Name] = len(e.families)
		keys = append(keys, f.AttrKey)
		e.families = append(e.families, counterFamily{instrument: ins})
		observables = append(observables, ins)
	}
	for _, def := range internaldefs.CounterDefs {
		i, ok := index[def.Family]
		if !ok {
			return nil, fmt.Errorf("counter %s: unknown family %q", def.Name, def.Family)
		}
		s := counterSeries{id: def.ID}
		if keys[i] != "" {
			s.attr = metric.WithAttributeSet(attribute.NewSet(attribute.String(keys[i], def.AttrValue)))
		}
		e.families[i].series = append(e.families[i].series, s)
	}

	for _, bound := range internaldefs.HistogramBounds {
		e.le = append(e.le, metric.WithAttributeSet(attribute.NewSet(attribute.String("le", bound))))
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets, err := meter.Int64ObservableGauge(def.Name+"_bucket",
			metric.WithDescription(def.Help+" Cumulative count per upper bound."))
		if err != nil {
			return nil, fmt.Errorf("create histogram buckets %s: %w", def.Name, err)
		}
		count, err := meter.Int64ObservableGauge(def.Name+"_count",
			metric.WithDescription(def.Help+" Total samples."))
		if err != nil {
			return nil, fmt.Errorf("create histogram count %s: %w", def.Name, err)
		}
		e.histograms = append(e.histograms, latencyHistogram{id: def.ID, buckets: buckets, count: count})
		observables = append(observables, buckets, count)
	}

	dropped, err := meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp))
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for _, f := range e.families {
		for _, s := range f.series {
			n := int64(snapshot.Counters[s.id])
			if s.attr == nil {
				o.ObserveInt64(f.instrument, n)
				continue
			}
			o.ObserveInt64(f.instrument, n, s.attr)
		}
	}

	for _, h := range e.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[h.id]))
		for i, n := range cumulative {
			o.ObserveInt64(h.buckets, int64(n), e.le[i])
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}

	dropped := make(map[string]uint64, len(auditScopes))
	for _, op := range auditScopes {
		dropped[op] = 0
	}
	for op, n := range e.source.AuditDroppedByOperation() {
		dropped[op] = n
	}
	for op, n := range dropped {
		o.ObserveInt64(e.auditDropped, int64(n),
			metric.WithAttributes(attribute.String(internaldefs.AuditDroppedAttr, op)))
	}
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
