package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goAuthClient/codec"
	"github.com/MrEthical07/goAuthClient/internal/dispatch"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/transport"
)

// Submitter runs credential exchanges for one operation, at most one at a time, and
// reports their lifecycle to a Listener.
//
// Signals are delivered on a dedicated goroutine in emission order. For a started
// attempt the order is always SubmissionStarted, SubmissionEnded, then at most one of
// FieldError, GenericNotification or SessionReady. A cancelled attempt ends with
// SubmissionEnded alone.
type Submitter struct {
	client   *Client
	op       Operation
	url      string
	listener Listener
	queue    *dispatch.Queue

	mu        sync.Mutex
	state     SubmissionState
	closed    bool
	attemptID string
	cancel    context.CancelCauseFunc
	// workers is only added to under mu while not closed.
	workers sync.WaitGroup
}

func newSubmitter(c *Client, op Operation, listener Listener) *Submitter {
	s := &Submitter{
		client:   c,
		op:       op,
		url:      c.endpointURL(op),
		listener: listener,
	}
	s.queue = dispatch.New(func(v any) {
		c.logger.Error("listener panicked",
			slog.String("operation", op.String()),
			slog.Any("panic", v),
		)
	})
	return s
}

// Operation returns the operation this submitter sends.
func (s *Submitter) Operation() Operation {
	return s.op
}

// State returns the current submission state.
func (s *Submitter) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempt validates creds and, when valid and nothing is in flight, starts an exchange.
// It never blocks on the network.
func (s *Submitter) Attempt(creds Credentials) AttemptResult {
	c := s.client

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return AttemptClosed
	}
	if s.state == StateInFlight {
		s.mu.Unlock()
		c.metrics.Inc(MetricAttemptIgnored)
		return AttemptIgnored
	}

	id := uuid.NewString()

	if issues := ValidateCredentials(creds, c.config.Validation, c.config.Messages); len(issues) > 0 {
		for _, issue := range issues {
			s.emit(Signal{
				Kind:      SignalFieldError,
				AttemptID: id,
				Field:     issue.Field,
				Message:   issue.Message,
				Focus:     issue.Focus,
			})
		}
		s.mu.Unlock()

		c.metrics.Inc(MetricAttemptRejected)
		c.logger.Debug("attempt rejected by validation",
			slog.String("attempt_id", id),
			slog.String("operation", s.op.String()),
			slog.Int("issues", len(issues)),
		)
		c.emitAudit(context.Background(), AuditEvent{
			EventType: AuditAttemptRejected,
			Operation: s.op.String(),
			AttemptID: id,
			AccountID: creds.Username,
			Success:   false,
			Metadata:  map[string]string{"issues": strconv.Itoa(len(issues))},
		})
		return AttemptRejected
	}

	ctx, cancel := context.WithCancelCause(context.Background())

	s.state = StateInFlight
	s.attemptID = id
	s.cancel = cancel
	s.workers.Add(1)
	s.emit(Signal{Kind: SignalSubmissionStarted, AttemptID: id})
	s.mu.Unlock()

	c.metrics.Inc(MetricAttemptStarted)
	c.logger.Info("attempt started",
		slog.String("attempt_id", id),
		slog.String("operation", s.op.String()),
	)
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditAttemptStarted,
		Operation: s.op.String(),
		AttemptID: id,
		AccountID: creds.Username,
		Success:   true,
	})

	go s.run(ctx, cancel, id, creds)
	return AttemptStarted
}

// Cancel stops the in-flight exchange, if any. The attempt then ends silently. It reports
// whether an attempt was cancelled; an attempt whose response has already arrived can no
// longer be cancelled and still delivers its outcome.
func (s *Submitter) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInFlight || s.cancel == nil {
		return false
	}
	s.cancel(ErrAttemptCancelled)
	return true
}

// Close cancels the in-flight attempt, waits for every attempt worker to finish recording
// and rejects further attempts. Signals already emitted are still delivered; Done is closed once they have
// been. Close is safe to call from a listener.
func (s *Submitter) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.state == StateInFlight && s.cancel != nil {
		s.cancel(ErrAttemptCancelled)
	}
	s.mu.Unlock()

	s.workers.Wait()
	s.queue.Close()
	s.client.forget(s)
}

// Done is closed after Close once every emitted signal has been delivered.
func (s *Submitter) Done() <-chan struct{} {
	return s.queue.Done()
}

// emit must be called with s.mu held so signals of consecutive attempts never interleave.
func (s *Submitter) emit(sig Signal) {
	listener := s.listener
	s.queue.Post(func() { listener.OnSignal(sig) })
}

func (s *Submitter) run(ctx context.Context, cancel context.CancelCauseFunc, id string, creds Credentials) {
	defer s.workers.Done()
	defer cancel(nil)

	c := s.client
	ctx = WithAttemptID(ctx, id)

	outcome, cancelled := s.exchange(ctx, creds)

	// Once the response is in, the attempt runs to completion.
	s.mu.Lock()
	cancelled = cancelled || errors.Is(context.Cause(ctx), ErrAttemptCancelled)
	s.cancel = nil
	s.mu.Unlock()

	var (
		sess       *session.Session
		persistErr error
	)
	if succ, ok := outcome.(codec.Success); ok && !cancelled {
		if len(succ.Dropped) > 0 {
			c.metrics.Add(MetricRolesDropped, uint64(len(succ.Dropped)))
			c.logger.Warn("unrecognized roles dropped",
				slog.String("attempt_id", id),
				slog.Any("roles", succ.Dropped),
			)
		}
		pctx, pcancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Session.PersistTimeout)
		sess, persistErr = c.materializer.Materialize(pctx, succ, creds)
		pcancel()
	}

	s.mu.Lock()
	s.state = StateIdle
	s.attemptID = ""

	s.emit(Signal{Kind: SignalSubmissionEnded, AttemptID: id})
	switch {
	case cancelled:
	case persistErr != nil:
		s.emit(c.router.RoutePersistFailure(persistErr).signal(id))
	case sess != nil:
		s.emit(Signal{Kind: SignalSessionReady, AttemptID: id, Session: sess.Clone()})
	default:
		if in, ok := c.router.Route(outcome); ok {
			s.emit(in.signal(id))
		}
	}
	s.mu.Unlock()

	s.record(ctx, id, creds.Username, outcome, cancelled, persistErr)
}

// exchange performs the network round trip and decodes it. cancelled reports a
// caller-initiated cancellation, in which case the outcome is meaningless.
func (s *Submitter) exchange(ctx context.Context, creds Credentials) (codec.Outcome, bool) {
	c := s.client

	body, err := codec.Encode(creds)
	if err != nil {
		return codec.Failure(fmt.Errorf("encode credentials: %w", err)), false
	}

	exCtx, exCancel := context.WithTimeoutCause(ctx, c.config.Exchange.Timeout, ErrExchangeTimeout)
	defer exCancel()

	start := time.Now()
	resp, err := c.exchanger.Exchange(exCtx, transport.Request{
		URL:         s.url,
		ContentType: codec.ContentType,
		Body:        body,
	})
	c.metrics.Observe(MetricExchangeLatency, transport.Since(start))

	if errors.Is(context.Cause(ctx), ErrAttemptCancelled) {
		return nil, true
	}
	if err != nil {
		if errors.Is(context.Cause(exCtx), ErrExchangeTimeout) {
			c.metrics.Inc(MetricAttemptTimeout)
			return codec.Failure(fmt.Errorf("%w: %v", ErrExchangeTimeout, err)), false
		}
		return codec.Failure(err), false
	}
	return codec.Decode(resp.Status, resp.Body), false
}

func (s *Submitter) record(ctx context.Context, id, account string, outcome codec.Outcome, cancelled bool, persistErr error) {
	c := s.client
	ctx = context.WithoutCancel(ctx)
	event := AuditEvent{
		Operation: s.op.String(),
		AttemptID: id,
		AccountID: account,
	}
	attrs := []slog.Attr{
		slog.String("attempt_id", id),
		slog.String("operation", s.op.String()),
	}

	switch {
	case cancelled:
		c.metrics.Inc(MetricAttemptCancelled)
		c.logger.LogAttrs(ctx, slog.LevelInfo, "attempt cancelled", attrs...)
		event.EventType = AuditAttemptCancelled
		event.Outcome = "cancelled"
		c.emitAudit(ctx, event)
		return
	case persistErr != nil:
		c.metrics.Inc(MetricAttemptSucceeded)
		c.metrics.Inc(MetricSessionPersistFailed)
		attrs = append(attrs, slog.String("error", persistErr.Error()))
		c.logger.LogAttrs(ctx, slog.LevelError, "session persist failed", attrs...)
		event.EventType = AuditSessionPersistFailed
		event.Outcome = codec.Kind(outcome)
		event.Error = persistErr.Error()
		c.emitAudit(ctx, event)
		return
	}

	event.Outcome = codec.Kind(outcome)
	attrs = append(attrs, slog.String("outcome", event.Outcome))

	switch v := outcome.(type) {
	case codec.Success:
		c.metrics.Inc(MetricAttemptSucceeded)
		c.metrics.Inc(MetricSessionPersisted)
		attrs = append(attrs, slog.String("roles", v.Roles.String()))
		c.logger.LogAttrs(ctx, slog.LevelInfo, "session ready", attrs...)
		event.EventType = AuditAttemptSucceeded
		event.Success = true
		event.Metadata = map[string]string{"roles": v.Roles.String()}
	case codec.FieldError:
		c.metrics.Inc(MetricFieldError)
		attrs = append(attrs, slog.String("field", v.Field.String()))
		c.logger.LogAttrs(ctx, slog.LevelInfo, "attempt refused", attrs...)
		event.EventType = AuditAttemptFailed
		event.Metadata = map[string]string{"field": v.Field.String()}
	case codec.GenericError:
		c.metrics.Inc(MetricGenericError)
		attrs = append(attrs, slog.String("kind", v.Kind))
		c.logger.LogAttrs(ctx, slog.LevelWarn, "attempt refused", attrs...)
		event.EventType = AuditAttemptFailed
		event.Metadata = map[string]string{"kind": v.Kind}
	case codec.TransportFailure:
		c.metrics.Inc(MetricTransportFailure)
		attrs = append(attrs, slog.String("error", v.Error()))
		c.logger.LogAttrs(ctx, slog.LevelWarn, "exchange failed", attrs...)
		event.EventType = AuditAttemptFailed
		event.Error = v.Error()
	}
	c.emitAudit(ctx, event)
}
