package audit

import (
	"context"
	"sync"
	"time"
)

// UnscopedOperation is the drop bucket of events that carry no operation, such as
// session removals.
const UnscopedOperation = "client"

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled bool
	// BufferSize bounds the events accepted but not yet picked up for delivery.
	BufferSize int
	// DropIfFull discards events instead of blocking the emitter when the buffer is full.
	DropIfFull bool
}

// Dispatcher delivers audit events to a sink from a single goroutine, in the order they
// were accepted. Events are stamped on acceptance so a slow sink does not skew them.
//
// Every event that does not reach the sink is counted against its operation: a full
// buffer with DropIfFull, an emitter whose context ends while waiting for room, or an
// emit after Close.
type Dispatcher struct {
	sink       Sink
	limit      int
	dropIfFull bool
	now        func() time.Time

	mu       sync.Mutex
	ready    *sync.Cond
	space    *sync.Cond
	queue    []Event
	closed   bool
	drops    map[string]uint64
	finished chan struct{}
}

// NewDispatcher starts a dispatcher, or returns nil when cfg.Enabled is false. All methods
// accept a nil receiver.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		limit:      cfg.BufferSize,
		dropIfFull: cfg.DropIfFull,
		now:        time.Now,
		queue:      make([]Event, 0, cfg.BufferSize),
		drops:      make(map[string]uint64),
		finished:   make(chan struct{}),
	}
	d.ready = sync.NewCond(&d.mu)
	d.space = sync.NewCond(&d.mu)

	go d.run()
	return d
}

// Emit accepts event for delivery. Without DropIfFull it waits for room until ctx ends.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dropIfFull && !d.closed && len(d.queue) >= d.limit {
		stop := context.AfterFunc(ctx, func() {
			d.mu.Lock()
			d.space.Broadcast()
			d.mu.Unlock()
		})
		defer stop()
		for !d.closed && len(d.queue) >= d.limit && ctx.Err() == nil {
			d.space.Wait()
		}
	}

	if d.closed || len(d.queue) >= d.limit {
		d.drops[operationOf(event)]++
		return
	}
	d.queue = append(d.queue, event)
	d.ready.Signal()
}

// run hands the accepted events to the sink in batches, so emitters only contend with
// the swap and never with sink I/O.
func (d *Dispatcher) run() {
	defer close(d.finished)

	var batch []Event
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.ready.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		batch, d.queue = d.queue, batch[:0]
		d.space.Broadcast()
		d.mu.Unlock()

		for i := range batch {
			d.sink.Emit(context.Background(), batch[i])
			batch[i] = Event{}
		}
	}
}

// Close stops intake and waits until every accepted event has reached the sink. It is
// idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.ready.Broadcast()
		d.space.Broadcast()
	}
	d.mu.Unlock()
	<-d.finished
}

// Dropped returns how many events never reached the sink.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var total uint64
	for _, n := range d.drops {
		total += n
	}
	return total
}

// DroppedByOperation returns a copy of the drop counts keyed by operation.
func (d *Dispatcher) DroppedByOperation() map[string]uint64 {
	out := make(map[string]uint64)
	if d == nil {
		return out
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for op, n := range d.drops {
		out[op] = n
	}
	return out
}

func operationOf(e Event) string {
	if e.Operation == "" {
		return UnscopedOperation
	}
	return e.Operation
}
