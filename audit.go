package goAuthClient

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrEthical07/goAuthClient/internal/audit"
)

// Audit event types emitted by submitters and the client.
const (
	AuditAttemptStarted       = "attempt_started"
	AuditAttemptRejected      = "attempt_rejected"
	AuditAttemptSucceeded     = "attempt_succeeded"
	AuditAttemptFailed        = "attempt_failed"
	AuditAttemptCancelled     = "attempt_cancelled"
	AuditSessionPersistFailed = "session_persist_failed"
	AuditSessionRemoved       = "session_removed"
)

// AuditEvent is one audit record. It never carries passwords or tokens.
type AuditEvent = audit.Event

// AuditSink receives audit events from the client's dispatcher goroutine.
type AuditSink = audit.Sink

type (
	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
	SlogSink       = audit.SlogSink
)

// NewChannelSink returns a sink buffering up to buffer events in a channel.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewSlogSink returns a sink logging events through logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return audit.NewSlogSink(logger)
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	c.audit.Emit(ctx, event)
}

// AuditUnscoped is the AuditDroppedByOperation key of events not tied to an operation.
const AuditUnscoped = audit.UnscopedOperation

// AuditDropped returns how many audit events never reached the sink.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// AuditDroppedByOperation splits AuditDropped by operation name ("login", "signup") with
// AuditUnscoped for session events.
func (c *Client) AuditDroppedByOperation() map[string]uint64 {
	if c == nil {
		return map[string]uint64{}
	}
	return c.audit.DroppedByOperation()
}
