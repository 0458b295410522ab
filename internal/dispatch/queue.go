package dispatch

import (
	"sync"
)

// Queue is a serial, unbounded FIFO of callbacks.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []func()
	closed bool

	done    chan struct{}
	onPanic func(any)
}

// New starts a queue. onPanic, when non-nil, receives values recovered from callbacks;
// otherwise a panicking callback is swallowed and the queue keeps running.
func New(onPanic func(any)) *Queue {
	q := &Queue{
		done:    make(chan struct{}),
		onPanic: onPanic,
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Post enqueues fn. It reports false when the queue is closed and fn will not run.
func (q *Queue) Post(fn func()) bool {
	if q == nil || fn == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, fn)
	q.cond.Signal()
	return true
}

// Close stops accepting work. Callbacks already posted still run; Done is closed after the
// last one returns. Close does not wait, so it is safe to call from a callback.
func (q *Queue) Close() {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
}

// Done is closed once the queue is closed and drained.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Pending returns the number of callbacks waiting to run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		fn := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		q.mu.Unlock()

		q.call(fn)
	}
}

func (q *Queue) call(fn func()) {
	defer func() {
		if r := recover(); r != nil && q.onPanic != nil {
			q.onPanic(r)
		}
	}()
	fn()
}
