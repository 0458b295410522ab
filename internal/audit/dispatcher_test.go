package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	got     []Event
}

func newBlockingSink() *blockingSink {
	return &blockingSink{entered: make(chan struct{}, 64), release: make(chan struct{})}
}

func (s *blockingSink) Emit(_ context.Context, e Event) {
	s.entered <- struct{}{}
	<-s.release
	s.mu.Lock()
	s.got = append(s.got, e)
	s.mu.Unlock()
}

func (s *blockingSink) events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.got...)
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 || len(d.DroppedByOperation()) != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestDispatcherDropIfFullCountsPerOperation(t *testing.T) {
	sink := newBlockingSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	d.Emit(context.Background(), Event{EventType: "attempt_started", Operation: "login"})
	<-sink.entered

	d.Emit(context.Background(), Event{EventType: "attempt_succeeded", Operation: "login"})
	d.Emit(context.Background(), Event{EventType: "attempt_started", Operation: "signup"})
	d.Emit(context.Background(), Event{EventType: "session_removed"})

	drops := d.DroppedByOperation()
	if drops["signup"] != 1 || drops[UnscopedOperation] != 1 || drops["login"] != 0 {
		t.Fatalf("unexpected drops %v", drops)
	}
	if d.Dropped() != 2 {
		t.Fatalf("expected 2 drops in total, got %d", d.Dropped())
	}

	close(sink.release)
	d.Close()

	got := sink.events()
	if len(got) != 2 || got[0].EventType != "attempt_started" || got[1].EventType != "attempt_succeeded" {
		t.Fatalf("expected the login attempt in order, got %+v", got)
	}
}

func TestDispatcherBlockingEmitHonoursContext(t *testing.T) {
	sink := newBlockingSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)

	d.Emit(context.Background(), Event{EventType: "attempt_started", Operation: "login"})
	<-sink.entered
	d.Emit(context.Background(), Event{EventType: "attempt_failed", Operation: "login"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	d.Emit(ctx, Event{EventType: "attempt_started", Operation: "signup"})
	if time.Since(start) < 15*time.Millisecond {
		t.Fatal("blocking emit returned before its context ended")
	}
	if d.DroppedByOperation()["signup"] != 1 {
		t.Fatalf("expected the abandoned event counted, got %v", d.DroppedByOperation())
	}

	close(sink.release)
	d.Close()
}

func TestDispatcherCloseDrainsInOrder(t *testing.T) {
	ch := NewChannelSink(16)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, ch)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "attempt_started", AttemptID: strconv.Itoa(i)})
	}
	d.Close()
	d.Close()

	for i := 0; i < 5; i++ {
		select {
		case e := <-ch.Events():
			if e.AttemptID != strconv.Itoa(i) {
				t.Fatalf("event %d out of order: %+v", i, e)
			}
			if e.Timestamp.IsZero() {
				t.Fatal("accepted event must be stamped")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("expected 5 events, got %d", i)
		}
	}
}

func TestDispatcherEmitAfterCloseIsCounted(t *testing.T) {
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, NoOpSink{})
	d.Close()

	d.Emit(context.Background(), Event{EventType: "attempt_cancelled", Operation: "login"})
	if d.DroppedByOperation()["login"] != 1 {
		t.Fatalf("expected late event counted, got %v", d.DroppedByOperation())
	}
}

func TestDispatcherKeepsCallerTimestamp(t *testing.T) {
	ch := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, ch)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	d.Emit(context.Background(), Event{EventType: "session_removed", Timestamp: at})
	d.Close()

	if e := <-ch.Events(); !e.Timestamp.Equal(at) {
		t.Fatalf("expected caller timestamp kept, got %v", e.Timestamp)
	}
}

func TestJSONWriterSinkOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{EventType: "attempt_succeeded", AccountID: "bob", Success: true})
	sink.Emit(context.Background(), Event{EventType: "attempt_failed", Outcome: "transport_failure"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var e Event
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.AccountID != "bob" || !e.Success {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestSlogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewSlogSink(logger)

	sink.Emit(context.Background(), Event{EventType: "attempt_failed", AttemptID: "a-1", Success: false})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["level"] != "WARN" || rec["attempt_id"] != "a-1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
