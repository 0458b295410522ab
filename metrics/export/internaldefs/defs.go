package internaldefs

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// CounterDef names one client counter for exporters. Prometheus exports it under Name;
// OTel folds it into Family as the series whose attribute carries AttrValue.
type CounterDef struct {
	ID        goAuthClient.MetricID
	Name      string
	Help      string
	Family    string
	AttrValue string
}

// CounterFamily groups counters that differ in one attribute. AttrKey is empty for a
// family with a single unattributed series.
type CounterFamily struct {
	Name    string
	Help    string
	AttrKey string
}

// HistogramDef names one client histogram for exporters.
type HistogramDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter of audit events that never reached the sink. OTel
// splits it by AuditDroppedAttr.
const (
	AuditDroppedName = "goauth_client_audit_dropped_total"
	AuditDroppedHelp = "Audit events that never reached the sink."
	AuditDroppedAttr = "operation"
)

// Counter family names.
const (
	FamilyAttempts     = "goauth_client_attempts_total"
	FamilyOutcomes     = "goauth_client_outcomes_total"
	FamilySessions     = "goauth_client_sessions_total"
	FamilyRolesDropped = "goauth_client_roles_dropped_total"
)

// CounterFamilies lists the attributed counters in export order.
var CounterFamilies = []CounterFamily{
	{Name: FamilyAttempts, Help: "Credential submissions by lifecycle stage.", AttrKey: "stage"},
	{Name: FamilyOutcomes, Help: "Decoded exchange outcomes.", AttrKey: "outcome"},
	{Name: FamilySessions, Help: "Session store events.", AttrKey: "event"},
	{Name: FamilyRolesDropped, Help: "Unrecognized role names discarded from successful exchanges."},
}

// CounterDefs lists every exported counter in MetricID order. Outcome attribute values
// match the outcome kinds written to logs and audit events.
var CounterDefs = []CounterDef{
	{ID: goAuthClient.MetricAttemptStarted, Name: "goauth_client_attempt_started_total", Help: "Attempts that reached the network.", Family: FamilyAttempts, AttrValue: "started"},
	{ID: goAuthClient.MetricAttemptIgnored, Name: "goauth_client_attempt_ignored_total", Help: "Attempts ignored while another was in flight.", Family: FamilyAttempts, AttrValue: "ignored"},
	{ID: goAuthClient.MetricAttemptRejected, Name: "goauth_client_attempt_rejected_total", Help: "Attempts rejected by local validation.", Family: FamilyAttempts, AttrValue: "rejected"},
	{ID: goAuthClient.MetricAttemptSucceeded, Name: "goauth_client_attempt_succeeded_total", Help: "Exchanges answered with an issued token.", Family: FamilyOutcomes, AttrValue: "success"},
	{ID: goAuthClient.MetricFieldError, Name: "goauth_client_field_error_total", Help: "Field-scoped rejections from the endpoint.", Family: FamilyOutcomes, AttrValue: "field_error"},
	{ID: goAuthClient.MetricGenericError, Name: "goauth_client_generic_error_total", Help: "Non-field rejections from the endpoint.", Family: FamilyOutcomes, AttrValue: "generic_error"},
	{ID: goAuthClient.MetricTransportFailure, Name: "goauth_client_transport_failure_total", Help: "Exchanges without a usable response.", Family: FamilyOutcomes, AttrValue: "transport_failure"},
	{ID: goAuthClient.MetricAttemptTimeout, Name: "goauth_client_attempt_timeout_total", Help: "Exchanges stopped by the exchange timeout.", Family: FamilyAttempts, AttrValue: "timed_out"},
	{ID: goAuthClient.MetricAttemptCancelled, Name: "goauth_client_attempt_cancelled_total", Help: "Attempts cancelled by the caller.", Family: FamilyAttempts, AttrValue: "cancelled"},
	{ID: goAuthClient.MetricSessionPersisted, Name: "goauth_client_session_persisted_total", Help: "Sessions written to the store.", Family: FamilySessions, AttrValue: "persisted"},
	{ID: goAuthClient.MetricSessionPersistFailed, Name: "goauth_client_session_persist_failed_total", Help: "Failed session store writes.", Family: FamilySessions, AttrValue: "persist_failed"},
	{ID: goAuthClient.MetricSessionRemoved, Name: "goauth_client_session_removed_total", Help: "Sessions removed by logout.", Family: FamilySessions, AttrValue: "removed"},
	{ID: goAuthClient.MetricRolesDropped, Name: "goauth_client_roles_dropped_total", Help: "Unrecognized role names discarded from successful exchanges.", Family: FamilyRolesDropped},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goAuthClient.MetricExchangeLatency, Name: "goauth_client_exchange_latency_seconds", Help: "Network exchange latency."},
}

// HistogramBounds are the upper bounds of the client's latency buckets, in seconds.
// The last bucket is unbounded.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundValues mirrors HistogramBounds without the +Inf bucket.
var HistogramBoundValues = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
