package dispatch

import (
	"sync"
	"testing"
	"time"
)

func TestQueueRunsInOrder(t *testing.T) {
	q := New(nil)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		if !q.Post(func() { got = append(got, i) }) {
			t.Fatalf("post %d rejected", i)
		}
	}
	q.Close()
	<-q.Done()

	if len(got) != 100 {
		t.Fatalf("expected 100 callbacks, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: %d", i, v)
		}
	}
}

func TestQueuePostFromCallbackDoesNotDeadlock(t *testing.T) {
	q := New(nil)
	finished := make(chan struct{})

	q.Post(func() {
		for i := 0; i < 10000; i++ {
			q.Post(func() {})
		}
		q.Post(func() { close(finished) })
	})

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("nested posts did not drain")
	}
	q.Close()
}

func TestQueueCloseFromCallback(t *testing.T) {
	q := New(nil)
	var ran bool
	q.Post(func() { q.Close() })
	q.Post(func() { ran = true })

	select {
	case <-q.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not finish after close from callback")
	}
	if !ran {
		t.Fatal("work posted before close must still run")
	}
	if q.Post(func() {}) {
		t.Fatal("expected post after close to be rejected")
	}
}

func TestQueueRecoversPanics(t *testing.T) {
	var (
		mu        sync.Mutex
		recovered []any
	)
	q := New(func(v any) {
		mu.Lock()
		recovered = append(recovered, v)
		mu.Unlock()
	})

	var after bool
	q.Post(func() { panic("boom") })
	q.Post(func() { after = true })
	q.Close()
	<-q.Done()

	if !after {
		t.Fatal("queue stopped after panic")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(recovered) != 1 || recovered[0] != "boom" {
		t.Fatalf("unexpected recovered values: %v", recovered)
	}
}

func TestNilQueueIsInert(t *testing.T) {
	var q *Queue
	if q.Post(func() {}) {
		t.Fatal("nil queue accepted work")
	}
	q.Close()
}
